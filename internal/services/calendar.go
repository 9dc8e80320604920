package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"teamcal-backend/internal/models"
)

// CalendarService serves date-range queries over stored activities in the
// shape the calendar widget consumes.
type CalendarService struct {
	store         ActivityStore
	rangeDays     int
	eventColor    string
	exerciseColor string
}

func NewCalendarService(store ActivityStore, rangeDays int, eventColor, exerciseColor string) *CalendarService {
	if rangeDays <= 0 {
		rangeDays = 90
	}
	return &CalendarService{
		store:         store,
		rangeDays:     rangeDays,
		eventColor:    eventColor,
		exerciseColor: exerciseColor,
	}
}

// DefaultWindow is half the configured range either side of now, used when
// the caller gives no explicit bounds.
func (s *CalendarService) DefaultWindow(now time.Time) (time.Time, time.Time) {
	half := time.Duration(s.rangeDays/2) * 24 * time.Hour
	return now.Add(-half), now.Add(half)
}

// Events returns activities overlapping [from, to] as calendar events.
// Windows wider than the configured range yield an empty result rather than
// an error, as a cap against pathological queries.
func (s *CalendarService) Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	span := to.Sub(from)
	if span < 0 {
		span = -span
	}
	if span > time.Duration(s.rangeDays)*24*time.Hour {
		return []models.CalendarEvent{}, nil
	}

	activities, err := s.store.GetActivities(ctx, from, to)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	events := make([]models.CalendarEvent, 0, len(activities))
	for _, activity := range activities {
		events = append(events, s.toCalendarEvent(activity))
	}
	return events, nil
}

// payloadFields are the payload keys the calendar view cares about.
type payloadFields struct {
	Reference            string `json:"reference"`
	ReferenceDescription string `json:"referenceDescription"`
	Description          string `json:"description"`
}

func (s *CalendarService) toCalendarEvent(activity models.Activity) models.CalendarEvent {
	var fields payloadFields
	json.Unmarshal(activity.Payload, &fields)

	color := s.eventColor
	if activity.ResourceType == models.ResourceTypeExercise {
		color = s.exerciseColor
	}

	return models.CalendarEvent{
		ID:    activity.ID + "-" + activity.ResourceType,
		Title: eventTitle(fields, activity.ResourceType),
		Start: activity.StartsAt,
		End:   activity.EndsAt,
		Color: color,
		ExtendedProps: models.ExtendedProps{
			ResourceType:         activity.ResourceType,
			Description:          fields.Description,
			Reference:            fields.Reference,
			ReferenceDescription: fields.ReferenceDescription,
		},
	}
}

// eventTitle prefers the reference, then its description, then a truncated
// free-text description, then a per-type label.
func eventTitle(fields payloadFields, resourceType string) string {
	switch {
	case fields.Reference != "":
		return fields.Reference
	case fields.ReferenceDescription != "":
		return fields.ReferenceDescription
	case fields.Description != "":
		return trimWords(fields.Description, 8)
	case resourceType == models.ResourceTypeExercise:
		return "Exercise"
	default:
		return "Event"
	}
}

func trimWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}
