package exporter

import "github.com/leorami/signal-export/internal/models"

// ComputeStats tallies a loaded archive for the stats command.
func ComputeStats(threads []models.Thread) models.ArchiveStats {
	var stats models.ArchiveStats
	stats.Threads = len(threads)
	for _, th := range threads {
		if th.Unknown {
			stats.Unknown++
		}
		if th.Avatar != "" {
			stats.WithAvatar++
		}
		for _, m := range th.Messages {
			stats.Messages++
			if m.Kind == "call" {
				stats.Calls++
			}
			for _, a := range m.Atts {
				stats.Attachments++
				if a.LikelyEncrypted {
					stats.StillEncrypted++
				}
			}
		}
	}
	return stats
}
