package module

import (
	"checkstats/internal/platform/config"
	"checkstats/internal/services/analyze/domain"
)

// Options holds configuration settings for the analyze module
type Options struct {
	Config domain.Config
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_ANALYZE_")
	def := domain.DefaultConfig()
	return Options{
		Config: domain.Config{
			EventCountPolicy: af.MayString("EVENT_COUNT_POLICY", def.EventCountPolicy),
			TextTruncLen:     af.MayInt("TEXT_TRUNC_LEN", def.TextTruncLen),
			IncludeService:   af.MayBool("INCLUDE_SERVICE", def.IncludeService),
			IncludeBots:      af.MayBool("INCLUDE_BOTS", def.IncludeBots),
			IncludeForwards:  af.MayBool("INCLUDE_FORWARDS", def.IncludeForwards),
			StitchFollowups:  af.MayBool("STITCH_FOLLOWUPS", def.StitchFollowups),
			StitchWindow:     af.MayDuration("STITCH_WINDOW", def.StitchWindow),
		},
	}
}
