package uci

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a scripted engine double. Every written command is
// recorded and handed to the script, which queues reply lines.
type fakeTransport struct {
	mu     sync.Mutex
	wrote  []string
	lines  chan string
	done   chan struct{}
	once   sync.Once
	script func(t *fakeTransport, line string)

	startErr error
}

func newFakeTransport(script func(t *fakeTransport, line string)) *fakeTransport {
	return &fakeTransport{
		lines:  make(chan string, 256),
		done:   make(chan struct{}),
		script: script,
	}
}

func (t *fakeTransport) Start(_ context.Context) error { return t.startErr }

func (t *fakeTransport) WriteLine(line string) error {
	t.mu.Lock()
	t.wrote = append(t.wrote, line)
	t.mu.Unlock()

	if t.script != nil {
		t.script(t, line)
	}

	return nil
}

func (t *fakeTransport) ReadLine() (string, error) {
	select {
	case line := <-t.lines:
		return line, nil
	case <-t.done:
		return "", io.EOF
	}
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.done) })

	return nil
}

// reply queues one engine output line.
func (t *fakeTransport) reply(lines ...string) {
	for _, line := range lines {
		t.lines <- line
	}
}

// written returns a snapshot of all commands sent so far.
func (t *fakeTransport) written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.wrote...)
}

// countWritten counts commands with the given prefix.
func (t *fakeTransport) countWritten(prefix string) int {
	n := 0

	for _, line := range t.written() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}

	return n
}

// respondHandshake scripts the standard startup replies, including banner
// text and option listings that the handshake must discard.
func respondHandshake(t *fakeTransport, line string) bool {
	switch line {
	case "uci":
		t.reply(
			"Stockfish 16 by the Stockfish developers (see AUTHORS file)",
			"id name Stockfish 16",
			"id author the Stockfish developers",
			"option name Threads type spin default 1 min 1 max 1024",
			"option name MultiPV type spin default 1 min 1 max 256",
			"uciok",
		)

		return true
	case "isready":
		t.reply("readyok")

		return true
	}

	return false
}

func newTestEngine(t *testing.T, script func(ft *fakeTransport, line string)) (*Engine, *fakeTransport) {
	t.Helper()

	ft := newFakeTransport(script)

	engine, err := New(context.Background(), WithTransport(ft), WithMultiPV(3))
	require.NoError(t, err)

	t.Cleanup(func() { _ = engine.Close() })

	return engine, ft
}

func TestNew_HandshakeSequence(t *testing.T) {
	_, ft := newTestEngine(t, func(ft *fakeTransport, line string) {
		respondHandshake(ft, line)
	})

	require.Equal(t, []string{
		"uci",
		"isready",
		"ucinewgame",
		"setoption name Threads value 1",
		"setoption name UCI_AnalyseMode value true",
		"setoption name MultiPV value 3",
		"isready",
	}, ft.written())
}

func TestNew_FirstReadyReplyNotReadyOk(t *testing.T) {
	ft := newFakeTransport(func(ft *fakeTransport, line string) {
		switch line {
		case "uci":
			ft.reply("id name grumpy", "uciok")
		case "isready":
			ft.reply("info string warming up")
		}
	})

	_, err := New(context.Background(), WithTransport(ft))
	require.Error(t, err)

	var hsErr *HandshakeError
	require.ErrorAs(t, err, &hsErr)
	assert.Equal(t, "readyok", hsErr.Expected)
	assert.Equal(t, "info string warming up", hsErr.Got)
}

func TestNew_SecondReadyReplyNotReadyOk(t *testing.T) {
	readyCount := 0
	ft := newFakeTransport(func(ft *fakeTransport, line string) {
		switch line {
		case "uci":
			ft.reply("id name grumpy", "uciok")
		case "isready":
			readyCount++
			if readyCount == 1 {
				ft.reply("readyok")
			} else {
				ft.reply("bestmove 0000")
			}
		}
	})

	_, err := New(context.Background(), WithTransport(ft))

	var hsErr *HandshakeError
	require.ErrorAs(t, err, &hsErr)
	assert.Equal(t, "bestmove 0000", hsErr.Got)
	assert.Equal(t, 2, readyCount)
}

func TestNew_TransportStartFailure(t *testing.T) {
	ft := newFakeTransport(nil)
	ft.startErr = errors.New("no such binary")

	_, err := New(context.Background(), WithTransport(ft))

	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	require.ErrorContains(t, err, "no such binary")
}

func TestNew_SpawnFailure(t *testing.T) {
	_, err := New(context.Background(), WithEnginePath("/nonexistent/engine-binary"))

	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "/nonexistent/engine-binary", startErr.Path)
}

func TestNew_NoEnginePath(t *testing.T) {
	_, err := New(context.Background())

	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
}

func TestEngine_CloseSendsQuitOnce(t *testing.T) {
	engine, ft := newTestEngine(t, func(ft *fakeTransport, line string) {
		respondHandshake(ft, line)
	})

	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())
	assert.Equal(t, 1, ft.countWritten("quit"))
}

func TestEngine_AnalyzeAfterClose(t *testing.T) {
	engine, _ := newTestEngine(t, func(ft *fakeTransport, line string) {
		respondHandshake(ft, line)
	})

	require.NoError(t, engine.Close())

	_, err := engine.Analyze(context.Background(), fenPosition(startFEN), nil, 5)
	require.ErrorIs(t, err, ErrEngineClosed)
}

// shellEngine is a minimal UCI engine as a shell script, enough to drive
// the full subprocess path end to end.
const shellEngine = `
while read line; do
  set -- $line
  case "$1" in
    uci) echo "id name shellfish"; echo "uciok";;
    isready) echo "readyok";;
    go) echo "info depth 1 multipv 1 score cp 31 pv e2e4 e7e5"
        echo "info depth 2 multipv 1 score cp 28 pv e2e4 e7e5 g1f3"
        echo "bestmove e2e4 ponder e7e5";;
    quit) exit 0;;
  esac
done
`

func TestNew_WithShellEngine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell engine needs sh")
	}

	engine, err := New(context.Background(),
		WithEnginePath("sh"),
		WithArgs("-c", shellEngine),
	)
	require.NoError(t, err)

	defer engine.Close()

	session, err := engine.Analyze(context.Background(), fenPosition(startFEN), nil, 2)
	require.NoError(t, err)

	var events []Event
	for ev := range session.Events() {
		events = append(events, ev)
	}

	require.NoError(t, session.Err())
	require.Len(t, events, 3)

	best, ok := events[2].(*BestMove)
	require.True(t, ok)
	assert.Equal(t, "e2e4", best.Move)
	assert.Equal(t, "e7e5", best.Ponder)
}
