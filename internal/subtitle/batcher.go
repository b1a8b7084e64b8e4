package subtitle

import "time"

// AutoBatch regroups all lines into scenes and batches. A gap of at least
// sceneThreshold between one line ending and the next starting opens a new
// scene; within a scene, batches hold at most maxBatchSize lines and a
// trailing batch smaller than minBatchSize is merged into its predecessor.
func (f *File) AutoBatch(sceneThreshold time.Duration, minBatchSize, maxBatchSize int) {
	lines := f.Lines()
	if len(lines) == 0 {
		return
	}
	if maxBatchSize <= 0 {
		maxBatchSize = len(lines)
	}

	var sceneLines [][]Line
	current := []Line{lines[0]}
	for _, line := range lines[1:] {
		prev := current[len(current)-1]
		if sceneThreshold > 0 && line.StartTime-prev.EndTime >= sceneThreshold {
			sceneLines = append(sceneLines, current)
			current = nil
		}
		current = append(current, line)
	}
	sceneLines = append(sceneLines, current)

	scenes := make([]*Scene, 0, len(sceneLines))
	for i, group := range sceneLines {
		scenes = append(scenes, &Scene{
			Number:  i + 1,
			Batches: splitBatches(group, minBatchSize, maxBatchSize),
		})
	}
	f.Scenes = scenes
}

func splitBatches(lines []Line, minBatchSize, maxBatchSize int) []*Batch {
	var batches []*Batch
	for start := 0; start < len(lines); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(lines) {
			end = len(lines)
		}
		batches = append(batches, &Batch{
			Number: len(batches) + 1,
			Lines:  append([]Line(nil), lines[start:end]...),
		})
	}

	// A short tail batch is folded into the one before it
	if len(batches) > 1 {
		last := batches[len(batches)-1]
		if last.LineCount() < minBatchSize {
			prev := batches[len(batches)-2]
			prev.Lines = append(prev.Lines, last.Lines...)
			batches = batches[:len(batches)-1]
		}
	}
	return batches
}
