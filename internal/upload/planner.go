// Package upload implements the multipart transfer pipeline: partition
// planning, gated concurrent part uploads, session orchestration, and
// admission control for large files.
package upload

import "fmt"

// MinPartSize is the smallest part the backend accepts for any part except
// the last (the S3 5 MiB floor).
const MinPartSize = 5 * 1024 * 1024

// PartRange is one half-open byte range [Start, End) of the source file.
type PartRange struct {
	Number int32
	Start  int64
	End    int64
}

func (r PartRange) Len() int64 {
	return r.End - r.Start
}

// Plan is the partition of a file into contiguous parts.
type Plan struct {
	PartCount int
	PartSize  int64
	Ranges    []PartRange
}

// PlanParts splits totalSize into ceil(totalSize/partSize) contiguous ranges.
// The final range may be shorter than partSize but never empty.
func PlanParts(totalSize, partSize int64) (Plan, error) {
	if totalSize <= 0 {
		return Plan{}, fmt.Errorf("%w: total size %d", ErrInvalidSize, totalSize)
	}
	if partSize < MinPartSize {
		return Plan{}, fmt.Errorf("%w: part size %d below minimum %d", ErrInvalidSize, partSize, MinPartSize)
	}

	count := int((totalSize + partSize - 1) / partSize)
	ranges := make([]PartRange, 0, count)
	for i := 0; i < count; i++ {
		start := int64(i) * partSize
		end := start + partSize
		if end > totalSize {
			end = totalSize
		}
		ranges = append(ranges, PartRange{
			Number: int32(i + 1),
			Start:  start,
			End:    end,
		})
	}

	return Plan{PartCount: count, PartSize: partSize, Ranges: ranges}, nil
}
