package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/database/repository"
	"github.com/jask/stickyscroll/internal/scroll"
)

// SampleTraceName is the trace seeded into an empty store.
const SampleTraceName = "sample-collapse"

// NotFoundError reports a missing trace along with similarly named ones.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("trace %q not found", e.Name)
	}
	return fmt.Sprintf("trace %q not found (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *NotFoundError) Unwrap() error { return repository.ErrTraceNotFound }

// TraceService stores, looks up and replays recorded traces.
type TraceService struct {
	Traces  *repository.TraceRepo
	Physics config.PhysicsConfig
	Logger  *slog.Logger
}

func (s *TraceService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Save names t and stores it, replacing a trace with the same name.
func (s *TraceService) Save(ctx context.Context, name string, t repository.Trace) (repository.Trace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Trace{}, fmt.Errorf("trace name required")
	}
	t.Name = name
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.Traces.Save(ctx, t); err != nil {
		return repository.Trace{}, fmt.Errorf("save trace %q: %w", name, err)
	}
	s.logger().Info("trace saved", "name", name, "id", t.ID, "events", len(t.Events))
	return t, nil
}

// Load fetches a trace by name. A miss returns a *NotFoundError.
func (s *TraceService) Load(ctx context.Context, name string) (*repository.Trace, error) {
	t, err := s.Traces.ByName(ctx, name)
	if errors.Is(err, repository.ErrTraceNotFound) {
		return nil, s.notFound(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load trace %q: %w", name, err)
	}
	return t, nil
}

// List returns stored traces, newest first.
func (s *TraceService) List(ctx context.Context) ([]repository.TraceSummary, error) {
	return s.Traces.List(ctx)
}

// Delete removes a trace by name.
func (s *TraceService) Delete(ctx context.Context, name string) error {
	err := s.Traces.Delete(ctx, name)
	if errors.Is(err, repository.ErrTraceNotFound) {
		return s.notFound(ctx, name)
	}
	return err
}

// Prune keeps only the keep newest traces.
func (s *TraceService) Prune(ctx context.Context, keep int) (int64, error) {
	n, err := s.Traces.Prune(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("prune traces: %w", err)
	}
	s.logger().Info("traces pruned", "removed", n, "kept", keep)
	return n, nil
}

// Replay runs the named trace through a fresh core.
func (s *TraceService) Replay(ctx context.Context, name string) ([]Step, error) {
	t, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.replayer().Run(*t), nil
}

// Verify replays the named trace and checks it reproduces the recorded offsets.
func (s *TraceService) Verify(ctx context.Context, name string) error {
	t, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	return s.replayer().Verify(*t)
}

func (s *TraceService) replayer() Replayer {
	return Replayer{Physics: s.Physics, Logger: s.Logger}
}

func (s *TraceService) notFound(ctx context.Context, name string) error {
	list, err := s.Traces.List(ctx)
	if err != nil {
		return &NotFoundError{Name: name}
	}
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name)
	}
	return &NotFoundError{Name: name, Suggestions: Suggest(name, names, 3)}
}

// Suggest returns up to limit candidates close to name, closest first.
// Candidates sharing a prefix with name or containing it always qualify;
// others must be within an edit distance of a third of the longer length.
func Suggest(name string, candidates []string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	var hits []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		dist := levenshtein.ComputeDistance(needle, lc)
		maxlen := max(len(needle), len(lc))
		if strings.HasPrefix(lc, needle) || strings.Contains(lc, needle) || dist*3 <= maxlen {
			hits = append(hits, scored{name: c, dist: dist})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.name)
	}
	return out
}

// SeedSample stores the built-in sample trace when the store is empty.
// It is idempotent and safe to run on every startup.
func (s *TraceService) SeedSample(ctx context.Context) error {
	n, err := s.Traces.Count(ctx)
	if err != nil {
		return fmt.Errorf("count traces: %w", err)
	}
	if n > 0 {
		return nil
	}
	t := SampleTrace(s.Physics)
	if err := s.Traces.Save(ctx, t); err != nil {
		return fmt.Errorf("seed sample trace: %w", err)
	}
	return nil
}

// SampleTrace records a scripted gesture: a fast swipe up on the header that
// flings it closed, then the child handing slack back until the header is
// fully revealed.
func SampleTrace(p config.PhysicsConfig) repository.Trace {
	const header = 96
	child := &replayChild{}
	s := NewSession(SessionOptions{
		HeaderHeight: header,
		Physics:      p,
		Child:        child,
		Logger:       slog.New(slog.DiscardHandler),
	})
	s.StartRecording()

	at := time.Duration(0)
	y := 400.0
	s.Pointer(scroll.PointerEvent{Kind: scroll.PointerDown, At: at, Y: y})
	for i := 0; i < 4; i++ {
		at += 10 * time.Millisecond
		y -= 12
		s.Pointer(scroll.PointerEvent{Kind: scroll.PointerMove, At: at, Y: y})
	}
	s.Pointer(scroll.PointerEvent{Kind: scroll.PointerUp, At: at, Y: y})
	for i := 0; i < 120 && s.FramePending(); i++ {
		at += 16 * time.Millisecond
		s.Frame(at)
	}

	// content scrolled back to its top, the header reveals again
	for _, dy := range []int{-30, -30, -30, -30} {
		at += 16 * time.Millisecond
		s.PreScroll(at, dy, false)
	}

	t := s.StopRecording()
	t.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("trace:"+SampleTraceName)).String()
	t.Name = SampleTraceName
	t.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return t
}
