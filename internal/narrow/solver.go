package narrow

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Request is what the optimizer sees: the narrowable submatrix of per-cell
// display widths and the width budget left after fixed columns.
type Request struct {
	Rows     int
	Cols     int
	MaxWidth int
	Lengths  [][]int
}

// Plan is the optimizer's answer: one width per narrowable column and one
// row allocation per original data row. A feasible plan satisfies, for
// every cell, length <= width[col] * rows[row], with the widths summing
// within the budget.
type Plan struct {
	Widths []int
	Rows   []int
}

// Solver produces a plan for a request. Implementations must not mutate the
// request and must honor ctx cancellation.
type Solver interface {
	Solve(ctx context.Context, req Request) (Plan, error)
}

const (
	defaultMarker  = "OPTIMAL"
	defaultTimeout = 30 * time.Second
)

// CommandSolver drives an external optimizer process over the line
// protocol: the request is written to stdin as whitespace-separated
// integers ("nrows ncols maxwidth" then the length matrix), the plan is
// read from stdout as "Widths: ..." and "Rows: ..." lines, and stderr must
// contain the success marker or the run counts as failed. The process runs
// under a deadline and is killed when it expires.
type CommandSolver struct {
	Command []string
	Marker  string
	Timeout time.Duration
}

func (s *CommandSolver) Solve(ctx context.Context, req Request) (Plan, error) {
	if len(s.Command) == 0 {
		return Plan{}, ErrUnavailable
	}
	marker := s.Marker
	if marker == "" {
		marker = defaultMarker
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, s.Command[0], s.Command[1:]...)
	cmd.Stdin = strings.NewReader(encodeRequest(req))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", timeout, err)
		}
		return Plan{}, &SolverError{Diagnostic: stderr.String(), Err: err}
	}
	if !strings.Contains(stderr.String(), marker) {
		return Plan{}, &SolverError{
			Diagnostic: stderr.String(),
			Err:        fmt.Errorf("success marker %q not found", marker),
		}
	}
	plan, err := parsePlan(stdout.String())
	if err != nil {
		return Plan{}, &SolverError{Diagnostic: stderr.String(), Err: err}
	}
	return plan, nil
}

func encodeRequest(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d\n", req.Rows, req.Cols, req.MaxWidth)
	for _, row := range req.Lengths {
		for j, l := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(l))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func parsePlan(out string) (Plan, error) {
	var plan Plan
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Widths:"):
			vals, err := parseInts(strings.TrimPrefix(line, "Widths:"))
			if err != nil {
				return Plan{}, fmt.Errorf("widths line: %w", err)
			}
			plan.Widths = vals
		case strings.HasPrefix(line, "Rows:"):
			vals, err := parseInts(strings.TrimPrefix(line, "Rows:"))
			if err != nil {
				return Plan{}, fmt.Errorf("rows line: %w", err)
			}
			plan.Rows = vals
		}
	}
	if plan.Widths == nil {
		return Plan{}, fmt.Errorf("output has no Widths line")
	}
	if plan.Rows == nil {
		return Plan{}, fmt.Errorf("output has no Rows line")
	}
	return plan, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", f)
		}
		out[i] = v
	}
	return out, nil
}
