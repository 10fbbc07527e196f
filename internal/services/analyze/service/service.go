// Package service implements the analyze run pipeline
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"

	"checkstats/internal/adapters/ingest/telegram"
	"checkstats/internal/core/bucket"
	"checkstats/internal/core/detector"
	"checkstats/internal/core/normalize"
	"checkstats/internal/platform/logger"
	"checkstats/internal/services/analyze/domain"
)

// Service implements domain.RunnerPort
type Service struct {
	Cfg      domain.Config
	Archiver domain.ArchiverPort
	log      *logger.Logger
	berlin   *time.Location
}

// New constructs an analyze service. The archiver may be nil for file-only
// runs
func New(cfg domain.Config, archiver domain.ArchiverPort) (*Service, error) {
	if cfg.EventCountPolicy == "" {
		cfg = domain.DefaultConfig()
	}
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return nil, err
	}
	return &Service{
		Cfg:      cfg,
		Archiver: archiver,
		log:      logger.Named("analyze"),
		berlin:   berlin,
	}, nil
}

// Analyze runs one full analysis: scan the export, detect and stitch events,
// aggregate buckets and write every derived artifact under OutDir
func (s *Service) Analyze(ctx context.Context, input domain.AnalyzeInput) (domain.Report, error) {
	startedUTC := time.Now().UTC()

	data, err := os.ReadFile(input.InputPath)
	if err != nil {
		return domain.Report{}, err
	}
	inputSum := sha256.Sum256(data)

	var counters domain.Counters
	var events []*domain.Event
	tally := bucket.NewTally()
	seen := make(map[int64]struct{})
	stitcher := newStitcher(s.Cfg)

	var datasetStart, datasetEnd bucket.Date
	datasetSeen := false

	rd := telegram.NewReader(data)
	for {
		if err := ctx.Err(); err != nil {
			return domain.Report{}, err
		}
		msg, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Report{}, err
		}
		counters.MessagesScanned++

		messageID, ok := telegram.MessageID(msg)
		if !ok {
			counters.MessagesExcludedNoMessageID++
			continue
		}
		if _, dup := seen[messageID]; dup {
			counters.MessagesExcludedDuplicateID++
			continue
		}
		seen[messageID] = struct{}{}

		rawTS, ok := telegram.TimestampValue(msg)
		if !ok {
			counters.MessagesExcludedNoTimestamp++
			continue
		}
		timestampUTC, naive, ok := telegram.ParseTimestamp(rawTS)
		if !ok {
			counters.MessagesExcludedInvalidTimestamp++
			continue
		}
		if naive {
			counters.NaiveTimestampCount++
		}

		timestampBerlin := timestampUTC.In(s.berlin)
		messageDate := bucket.DateOf(timestampBerlin)

		// the dataset range covers every datable message, filtered or not
		if !datasetSeen {
			datasetStart, datasetEnd = messageDate, messageDate
			datasetSeen = true
		} else {
			if messageDate.Before(datasetStart) {
				datasetStart = messageDate
			}
			if messageDate.After(datasetEnd) {
				datasetEnd = messageDate
			}
		}

		if !s.Cfg.IncludeService && telegram.IsService(msg) {
			counters.MessagesExcludedService++
			continue
		}
		if !s.Cfg.IncludeBots && telegram.IsBot(msg) {
			counters.MessagesExcludedBot++
			continue
		}
		if !s.Cfg.IncludeForwards && telegram.IsForwarded(msg) {
			counters.MessagesExcludedForward++
			continue
		}
		counters.MessagesIncluded++

		senderKey := telegram.SenderKey(msg)

		text, textOK := normalize.Text(msg["text"])
		if !textOK {
			counters.MessagesTextNonString++
		}
		caption, captionOK := normalize.Text(msg["caption"])
		if !captionOK {
			counters.MessagesCaptionNonString++
		}
		searchText := normalize.SearchText(text, caption)

		res := detector.Detect(searchText)
		if !res.IsCheckEvent {
			stitcher.maybeStitch(senderKey, messageID, timestampUTC, res)
			continue
		}

		weight := eventWeight(s.Cfg.EventCountPolicy, res.KTokenHitCount)
		countMatch(&counters, res.MatchType, weight)

		event := buildEvent(messageID, timestampUTC, timestampBerlin, searchText, res, weight, s.Cfg.TextTruncLen)
		events = append(events, event)
		stitcher.open(senderKey, event, timestampUTC)

		tally.Add(bucket.CalendarOf(timestampBerlin), weight)
	}

	if !datasetSeen {
		today := bucket.DateOf(time.Now().In(s.berlin))
		datasetStart, datasetEnd = today, today
	}

	sortEvents(events)
	if err := writeArtifacts(input.OutDir, datasetStart, datasetEnd, events, tally); err != nil {
		return domain.Report{}, err
	}

	completedUTC := time.Now().UTC()
	report := domain.Report{
		InputPath:    input.InputPath,
		InputSHA256:  hex.EncodeToString(inputSum[:]),
		OutDir:       input.OutDir,
		StartedUTC:   startedUTC,
		CompletedUTC: completedUTC,
		Counters:     counters,
		DatasetStart: datasetStart.String(),
		DatasetEnd:   datasetEnd.String(),
		TotalDays:    daysBetween(datasetStart, datasetEnd) + 1,
		Events:       len(events),
	}
	if err := writeMetadata(input.OutDir, s.Cfg, report, input.Argv); err != nil {
		return domain.Report{}, err
	}

	if s.Archiver != nil {
		flat := make([]domain.Event, len(events))
		for i, e := range events {
			flat[i] = *e
		}
		if err := s.Archiver.SaveRun(ctx, report, flat); err != nil {
			s.log.Error().Err(err).Str("input", input.InputPath).Msg("archiving run failed")
		}
	}

	s.log.Info().
		Int("messages", counters.MessagesScanned).
		Int("events", len(events)).
		Str("dataset_start", report.DatasetStart).
		Str("dataset_end", report.DatasetEnd).
		Msg("analysis complete")
	return report, nil
}

func daysBetween(start, end bucket.Date) int {
	return int(end.Time().Sub(start.Time()) / (24 * time.Hour))
}

// eventWeight applies the event count policy
func eventWeight(policy string, kTokenHits int) int {
	if policy == "token" && kTokenHits > 0 {
		return kTokenHits
	}
	return 1
}

func countMatch(c *domain.Counters, mt detector.MatchType, weight int) {
	c.EventsMatchedTotal++
	c.EventsWeightTotal += weight
	switch mt {
	case detector.MatchKToken:
		c.EventsMatchedKTokenOnly++
		c.EventsWeightKTokenOnly += weight
	case detector.MatchKeyword:
		c.EventsMatchedKeywordOnly++
		c.EventsWeightKeywordOnly += weight
	case detector.MatchBoth:
		c.EventsMatchedBoth++
		c.EventsWeightBoth += weight
	}
}

func buildEvent(
	messageID int64,
	timestampUTC, timestampBerlin time.Time,
	searchText string,
	res detector.Result,
	weight, truncLen int,
) *domain.Event {
	textSum := sha256.Sum256([]byte(searchText))
	return &domain.Event{
		EventID:             "evt-" + itoa64(messageID),
		MessageID:           messageID,
		TimestampUTC:        timestampUTC,
		TimestampBerlin:     timestampBerlin,
		MatchType:           res.MatchType,
		EventWeight:         weight,
		MatchedKValues:      res.MatchedKValues,
		MatchedKeywords:     res.MatchedKeywords,
		KTokenHitCount:      res.KTokenHitCount,
		ConfidenceScore:     res.Score,
		KMin:                res.KMin,
		KMax:                res.KMax,
		KBounded:            res.KBounded,
		KQualifier:          res.KQualifier,
		ControlKeywordHit:   res.ControlKeywordHit,
		ControlKeywordForms: res.ControlKeywordForms,
		LineID:              res.LineID,
		ModeGuess:           string(res.ModeGuess),
		LineValidated:       res.LineValidated,
		LineConfidence:      res.LineConfidence,
		DirectionText:       res.DirectionText,
		DirectionPolarity:   res.DirectionPolarity,
		LocationText:        res.LocationText,
		PlatformText:        res.PlatformText,
		TextTrunc:           truncate(searchText, truncLen),
		TextLen:             len([]rune(searchText)),
		TextSHA256:          hex.EncodeToString(textSum[:]),
	}
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
