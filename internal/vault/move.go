package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// JobState tracks a MoveJob through its single run
type JobState int

const (
	Idle JobState = iota
	Running
	Completed
	Failed
)

func (s JobState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

// MoveJob is a batch of sources bound for one destination folder.
// Total is fixed at creation; Completed advances by one per moved file.
type MoveJob struct {
	Sources     []string
	Destination string
	Completed   int
	Total       int
	State       JobState
}

// NewMoveJob creates an idle job
func NewMoveJob(sources []string, destination string) *MoveJob {
	return &MoveJob{
		Sources:     append([]string(nil), sources...),
		Destination: destination,
		Total:       len(sources),
	}
}

// Progress is reported after each moved file
type Progress struct {
	Completed int
	Total     int
	Source    string
	Target    string
}

// MoveResult summarizes a batch. Failed is the source the batch stopped
// at, empty on success.
type MoveResult struct {
	Completed int
	Total     int
	Moved     []string
	Failed    string
}

const (
	opMove   = "move"
	opExport = "export"
	opImport = "import"
)

// MoveBatch moves job.Sources into job.Destination, a folder inside the
// vault. Sources may live anywhere; relative sources are taken relative
// to the vault root. ctx is only checked before the first file.
func (m *Manager) MoveBatch(ctx context.Context, job *MoveJob, onProgress func(Progress)) (MoveResult, error) {
	dest, err := m.vaultDir(job.Destination)
	if err != nil {
		return MoveResult{Total: job.Total}, err
	}
	return m.run(ctx, opMove, dest, job, onProgress)
}

// MoveSeq is MoveBatch as a sequence: one Progress per moved file, then a
// final error if the batch stopped early. Breaking out of the loop stops
// the reporting, not the batch.
func (m *Manager) MoveSeq(ctx context.Context, job *MoveJob) iter.Seq2[Progress, error] {
	return func(yield func(Progress, error) bool) {
		stopped := false
		_, err := m.MoveBatch(ctx, job, func(p Progress) {
			if !stopped && !yield(p, nil) {
				stopped = true
			}
		})
		if err != nil && !stopped {
			yield(Progress{Completed: job.Completed, Total: job.Total}, err)
		}
	}
}

// ExportBatch moves sources out of the vault into the export directory,
// creating it when needed.
func (m *Manager) ExportBatch(ctx context.Context, sources []string, onProgress func(Progress)) (MoveResult, error) {
	job := NewMoveJob(sources, m.exportDir)
	if m.exportDir == "" {
		return MoveResult{Total: job.Total}, ErrNoExportDir
	}
	if err := os.MkdirAll(m.exportDir, 0700); err != nil {
		return MoveResult{Total: job.Total}, fmt.Errorf("failed to create export directory: %w", ioError(err))
	}
	return m.run(ctx, opExport, m.exportDir, job, onProgress)
}

// ImportAudio moves sources into the Audios folder of the vault, creating
// it when needed.
func (m *Manager) ImportAudio(ctx context.Context, sources []string, onProgress func(Progress)) (MoveResult, error) {
	job := NewMoveJob(sources, AudioFolder)

	pv, err := m.validator()
	if err != nil {
		return MoveResult{Total: job.Total}, err
	}
	if err := pv.MkdirAllInRoot(AudioFolder, 0700); err != nil {
		return MoveResult{Total: job.Total}, fmt.Errorf("failed to create %s: %w", AudioFolder, ioError(err))
	}
	return m.run(ctx, opImport, pv.Abs(AudioFolder), job, onProgress)
}

// vaultDir resolves an existing folder inside the vault
func (m *Manager) vaultDir(p string) (string, error) {
	pv, err := m.validator()
	if err != nil {
		return "", err
	}
	rel, err := pv.Resolve(p)
	if err != nil {
		return "", err
	}
	info, err := pv.StatInRoot(rel)
	if err != nil {
		return "", fmt.Errorf("failed to open destination %s: %w", rel, ioError(err))
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, rel)
	}
	return pv.Abs(rel), nil
}

// sourcePath makes relative sources vault-relative
func (m *Manager) sourcePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	pv, err := m.validator()
	if err != nil {
		return "", err
	}
	rel, err := pv.Resolve(p)
	if err != nil {
		return "", err
	}
	return pv.Abs(rel), nil
}

func (m *Manager) run(ctx context.Context, op, dest string, job *MoveJob, onProgress func(Progress)) (MoveResult, error) {
	res := MoveResult{Total: job.Total}

	if job.State != Idle {
		return res, ErrJobStarted
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	unlock := m.locks.Lock(dest)
	defer unlock()

	log := m.log.With(zap.String("operation", op), zap.String("destination", dest))
	log.Info("batch started", zap.Int("total", job.Total))

	start := time.Now()
	job.State = Running
	defer func() {
		m.metrics.ObserveBatch(op, time.Since(start))
		m.metrics.RecordMoved(op, res.Completed)
	}()

	for _, src := range job.Sources {
		target, err := m.moveOne(src, dest)
		if err != nil {
			job.State = Failed
			res.Failed = src
			m.metrics.RecordMoveFailure(op, failureReason(err))
			log.Warn("batch stopped",
				zap.Int("completed", job.Completed),
				zap.Int("total", job.Total),
				zap.String("source", src),
				zap.Error(err),
			)
			return res, err
		}

		job.Completed++
		res.Completed = job.Completed
		res.Moved = append(res.Moved, target)
		if onProgress != nil {
			onProgress(Progress{
				Completed: job.Completed,
				Total:     job.Total,
				Source:    src,
				Target:    target,
			})
		}
	}

	job.State = Completed
	log.Info("batch completed",
		zap.Int("completed", job.Completed),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrSourceMissing):
		return "source_missing"
	case errors.Is(err, ErrDestinationConflict):
		return "conflict"
	default:
		return "io"
	}
}

// moveOne moves src into dir and returns where it ended up
func (m *Manager) moveOne(src, dir string) (string, error) {
	abs, err := m.sourcePath(src)
	if err != nil {
		return "", &MoveError{Source: src, Err: err}
	}
	src = abs

	info, err := os.Lstat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &MoveError{Source: src, Err: ErrSourceMissing}
	}
	if err != nil {
		return "", &MoveError{Source: src, Err: ioError(err)}
	}

	if filepath.Dir(src) == dir {
		return src, nil
	}

	target, err := freeName(dir, filepath.Base(src))
	if err != nil {
		return "", &MoveError{Source: src, Destination: dir, Err: err}
	}

	err = m.rename(src, target)
	if isCrossDevice(err) {
		m.log.Debug("cross-device move, copying", zap.String("source", src))
		err = copyAcross(src, target, info)
	}
	if err != nil {
		if _, statErr := os.Lstat(src); errors.Is(statErr, fs.ErrNotExist) {
			return "", &MoveError{Source: src, Destination: target, Err: ErrSourceMissing}
		}
		return "", &MoveError{Source: src, Destination: target, Err: ioError(err)}
	}
	return target, nil
}
