package alarms

import (
	"context"
	"sort"

	"glarm/internal/models"
	"glarm/pkg/metrics"
)

// Bucket is the display grouping an alarm falls into.
type Bucket string

const (
	BucketActive   Bucket = "active"
	BucketMarked   Bucket = "marked"
	BucketCategory Bucket = "category"
	BucketPast     Bucket = "past"
)

// Section is one labeled group of the browse list.
type Section struct {
	Bucket Bucket          `json:"bucket"`
	Label  string          `json:"label,omitempty"` // category name for category sections
	Alarms []*models.Alarm `json:"alarms"`
}

// Browse is the fully derived browse list.
type Browse struct {
	Sections []Section `json:"sections"`
}

// FetchAlarms re-derives the browse list: snapshot the pending identifiers,
// load every persisted alarm, and classify. No state is carried between
// calls.
func (m *Manager) FetchAlarms(ctx context.Context) (*Browse, error) {
	pending, err := m.center.PendingIdentifiers(ctx)
	if err != nil {
		return nil, err
	}
	alarms, err := models.GetAllAlarms(m.db)
	if err != nil {
		return nil, err
	}
	metrics.ClassifyRuns.Inc()
	return Classify(alarms, pending), nil
}

// Classify partitions alarms into buckets with fixed precedence
// active > marked > category > past, each ordered by creation date
// descending. Category sections are labeled by name, sorted alphabetically,
// and sit between the marked and past sections. Every alarm lands in
// exactly one bucket.
func Classify(alarms []*models.Alarm, pending map[string]struct{}) *Browse {
	var active, marked, past []*models.Alarm
	byCategory := make(map[string][]*models.Alarm)

	for _, alarm := range alarms {
		_, alarm.IsActive = pending[alarm.ID.String()]
		switch {
		case alarm.IsActive:
			active = append(active, alarm)
		case alarm.IsMarked:
			marked = append(marked, alarm)
		case alarm.CategoryName != nil && *alarm.CategoryName != "":
			name := *alarm.CategoryName
			byCategory[name] = append(byCategory[name], alarm)
		default:
			past = append(past, alarm)
		}
	}

	newestFirst := func(bucket []*models.Alarm) {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].DateCreated.After(bucket[j].DateCreated)
		})
	}
	newestFirst(active)
	newestFirst(marked)
	newestFirst(past)

	categoryNames := make([]string, 0, len(byCategory))
	for name := range byCategory {
		newestFirst(byCategory[name])
		categoryNames = append(categoryNames, name)
	}
	sort.Strings(categoryNames)

	sections := make([]Section, 0, 3+len(categoryNames))
	sections = append(sections,
		Section{Bucket: BucketActive, Alarms: emptyNotNil(active)},
		Section{Bucket: BucketMarked, Alarms: emptyNotNil(marked)},
	)
	for _, name := range categoryNames {
		sections = append(sections, Section{Bucket: BucketCategory, Label: name, Alarms: byCategory[name]})
	}
	sections = append(sections, Section{Bucket: BucketPast, Alarms: emptyNotNil(past)})

	return &Browse{Sections: sections}
}

func emptyNotNil(alarms []*models.Alarm) []*models.Alarm {
	if alarms == nil {
		return []*models.Alarm{}
	}
	return alarms
}
