package pipeline

import (
	"fmt"
	"time"
)

// Stream names identify the stage a queue file belongs to.
const (
	StreamSymmetric = "symmetric"
	StreamHE        = "he"
	StreamPlain     = "plain"
)

const stampLayout = "20060102_150405"

// StreamFilename builds the persisted queue file name for one run and
// stage. The leading timestamp is what the latest-file lookup sorts on;
// the parameter fields let an operator spot a mismatched run at a glance.
func StreamFilename(now time.Time, p Params, stream string) string {
	return fmt.Sprintf("%s_%s_BatchNr:%d_BatchSize:%d_IntSize:%d_%s.bin",
		now.Format(stampLayout), p.Variant, p.BatchNumber, p.BatchSize, int(p.IntSize), stream)
}
