package services

import (
	"math"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// TopicAverage is the mean rating of one topic of one activity, rounded to 2 decimals.
type TopicAverage struct {
	Topic    string  `json:"topic"`
	Rating   float64 `json:"rating"`
	Activity string  `json:"activity"`
}

// ActivitySummary groups the topic averages of one activity with their overall mean.
type ActivitySummary struct {
	ActivityID int64          `json:"activity_id"`
	Activity   string         `json:"activity"`
	Average    float64        `json:"average"`
	Topics     []TopicAverage `json:"topics"`
}

type AggregationService interface {
	// ComputeAverages returns, per activity id, the average of every rated topic.
	// Unrated rows are ignored. Topics keep the order of their first rating row.
	ComputeAverages(dbc dbctx.Context) (map[int64][]TopicAverage, error)
	// Summaries is the same rollup as an ordered list with a per-activity overall average.
	Summaries(dbc dbctx.Context) ([]ActivitySummary, error)
}

type aggregationService struct {
	log        *logger.Logger
	ratingRepo repos.RatingRepo
}

func NewAggregationService(log *logger.Logger, ratingRepo repos.RatingRepo) AggregationService {
	return &aggregationService{
		log:        log.With("service", "AggregationService"),
		ratingRepo: ratingRepo,
	}
}

func (s *aggregationService) ComputeAverages(dbc dbctx.Context) (map[int64][]TopicAverage, error) {
	summaries, err := s.Summaries(dbc)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]TopicAverage, len(summaries))
	for _, sum := range summaries {
		out[sum.ActivityID] = sum.Topics
	}
	return out, nil
}

func (s *aggregationService) Summaries(dbc dbctx.Context) ([]ActivitySummary, error) {
	aggs, err := s.ratingRepo.TopicAggregates(dbc)
	if err != nil {
		s.log.Warn("Failed to load rating aggregates", "error", err)
		return nil, err
	}

	out := make([]ActivitySummary, 0)
	index := map[int64]int{}
	for _, a := range aggs {
		if a.Count == 0 {
			continue
		}
		i, ok := index[a.ActivityID]
		if !ok {
			i = len(out)
			index[a.ActivityID] = i
			out = append(out, ActivitySummary{ActivityID: a.ActivityID, Activity: a.Activity})
		}
		out[i].Topics = append(out[i].Topics, TopicAverage{
			Topic:    a.Topic,
			Rating:   round2(float64(a.Sum) / float64(a.Count)),
			Activity: a.Activity,
		})
	}
	for i := range out {
		var total float64
		for _, t := range out[i].Topics {
			total += t.Rating
		}
		out[i].Average = round2(total / float64(len(out[i].Topics)))
	}
	return out, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
