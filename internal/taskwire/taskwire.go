// Package taskwire serializes and deserializes task.Task values to the
// structpb.Struct payload shape carried over RPC commands, so the
// scheduler, orchestrator and tracker processes can exchange a task
// without any of them sharing memory.
package taskwire

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/je9pel/observatory/internal/astro"
	"github.com/je9pel/observatory/internal/task"
)

// ToStruct encodes t into the payload shape FromStruct decodes.
func ToStruct(t *task.Task) *structpb.Struct {
	payload, _ := structpb.NewStruct(map[string]any{
		"task_id":            t.TaskID,
		"source":             t.Source,
		"timestamp":          t.Timestamp.Format(time.RFC3339Nano),
		"task_type":          string(t.TaskType),
		"sat_id":             t.Parameters.SatID,
		"aos":                eventToAny(t.Parameters.Aos),
		"tca":                eventToAny(t.Parameters.Tca),
		"los":                eventToAny(t.Parameters.Los),
		"sdr_sat_id":         t.Parameters.SDR.SatID,
		"sdr_freq_hz":        t.Parameters.SDR.Freq,
		"interpolated_orbit": orbitToAny(t.Parameters.InterpolatedOrbit),
	})
	return payload
}

// FromStruct decodes a Task from the payload ToStruct produces.
func FromStruct(payload *structpb.Struct) *task.Task {
	return &task.Task{
		TaskID:    payload.Fields["task_id"].GetStringValue(),
		Source:    payload.Fields["source"].GetStringValue(),
		Timestamp: parseTime(payload.Fields["timestamp"].GetStringValue()),
		TaskType:  task.Type(payload.Fields["task_type"].GetStringValue()),
		Parameters: task.Parameters{
			SatID: payload.Fields["sat_id"].GetStringValue(),
			Aos:   eventFromValue(payload.Fields["aos"]),
			Tca:   eventFromValue(payload.Fields["tca"]),
			Los:   eventFromValue(payload.Fields["los"]),
			SDR: task.SDRParameters{
				SatID: payload.Fields["sdr_sat_id"].GetStringValue(),
				Freq:  payload.Fields["sdr_freq_hz"].GetNumberValue(),
			},
			InterpolatedOrbit: orbitFromValue(payload.Fields["interpolated_orbit"]),
		},
	}
}

func eventToAny(e *astro.Event) any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"time":       e.Time.Format(time.RFC3339Nano),
		"az":         e.State.Az,
		"el":         e.State.El,
		"az_rate":    e.State.AzRate,
		"el_rate":    e.State.ElRate,
		"range":      e.State.Range,
		"range_rate": e.State.RangeRate,
	}
}

func eventFromValue(v *structpb.Value) *astro.Event {
	s := v.GetStructValue()
	if s == nil {
		return nil
	}
	return &astro.Event{
		Time: parseTime(s.Fields["time"].GetStringValue()),
		State: astro.KinematicState{
			Az:        s.Fields["az"].GetNumberValue(),
			El:        s.Fields["el"].GetNumberValue(),
			AzRate:    s.Fields["az_rate"].GetNumberValue(),
			ElRate:    s.Fields["el_rate"].GetNumberValue(),
			Range:     s.Fields["range"].GetNumberValue(),
			RangeRate: s.Fields["range_rate"].GetNumberValue(),
		},
	}
}

func orbitToAny(o astro.InterpolatedOrbit) any {
	az := make([]any, len(o.Az))
	el := make([]any, len(o.El))
	ts := make([]any, len(o.Time))
	for i := range o.Time {
		az[i] = o.Az[i]
		el[i] = o.El[i]
		ts[i] = o.Time[i].Format(time.RFC3339Nano)
	}
	return map[string]any{"az": az, "el": el, "time": ts}
}

func orbitFromValue(v *structpb.Value) astro.InterpolatedOrbit {
	s := v.GetStructValue()
	if s == nil {
		return astro.InterpolatedOrbit{}
	}
	azList := s.Fields["az"].GetListValue().GetValues()
	elList := s.Fields["el"].GetListValue().GetValues()
	tsList := s.Fields["time"].GetListValue().GetValues()

	orbit := astro.InterpolatedOrbit{
		Az:   make([]float64, len(azList)),
		El:   make([]float64, len(elList)),
		Time: make([]time.Time, len(tsList)),
	}
	for i, v := range azList {
		orbit.Az[i] = v.GetNumberValue()
	}
	for i, v := range elList {
		orbit.El[i] = v.GetNumberValue()
	}
	for i, v := range tsList {
		orbit.Time[i] = parseTime(v.GetStringValue())
	}
	return orbit
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
