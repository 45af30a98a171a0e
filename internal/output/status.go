package output

import (
	"context"
	"fmt"
	"time"
)

func StatusBar(ctx context.Context, refreshRate time.Duration, printF func()) {
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			printF()
		case <-ctx.Done():
			return
		}
	}
}

func PrettySessionStatus(elapsed, total time.Duration) string {
	percent := 100
	if total > 0 && elapsed < total {
		percent = int(elapsed * 100 / total)
	}
	return fmt.Sprintf("Profiling: [%s] %3d%% %s/%s",
		ProgressBar(percent, 40),
		percent,
		elapsed.Round(time.Second),
		total.Round(time.Second),
	)
}
