package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScheduleTemplate is what the admin panel offers when creating slots: the
// predefined time windows and how many days ahead dates may be picked.
type ScheduleTemplate struct {
	HorizonDays int      `yaml:"horizon_days"`
	Times       []string `yaml:"times"`
}

// DefaultSchedule is twenty half-hour windows from 09:00 to 19:00 over a
// two week horizon.
func DefaultSchedule() ScheduleTemplate {
	times := make([]string, 0, 20)
	start := time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		from := start.Add(time.Duration(i) * 30 * time.Minute)
		to := from.Add(30 * time.Minute)
		times = append(times, from.Format("15:04")+"-"+to.Format("15:04"))
	}
	return ScheduleTemplate{HorizonDays: 14, Times: times}
}

// LoadSchedule reads a YAML template from path.  An empty path yields the
// default template; fields omitted in the file keep their defaults.
func LoadSchedule(path string) (ScheduleTemplate, error) {
	tpl := DefaultSchedule()
	if path == "" {
		return tpl, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ScheduleTemplate{}, fmt.Errorf("read schedule file: %w", err)
	}
	var file ScheduleTemplate
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return ScheduleTemplate{}, fmt.Errorf("parse schedule file: %w", err)
	}
	if file.HorizonDays > 0 {
		tpl.HorizonDays = file.HorizonDays
	}
	if len(file.Times) > 0 {
		tpl.Times = file.Times
	}
	return tpl, nil
}

// Dates returns the selectable dates starting at today in loc.
func (t ScheduleTemplate) Dates(now time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc)
	out := make([]string, 0, t.HorizonDays)
	for i := 0; i < t.HorizonDays; i++ {
		out = append(out, today.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return out
}
