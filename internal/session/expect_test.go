package session

import (
	"context"
	"errors"
	"io"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// feed writes chunks to the far end of a pipe in the background.
func feed(t *testing.T, w io.Writer, chunks ...string) {
	t.Helper()
	go func() {
		for _, c := range chunks {
			if _, err := io.WriteString(w, c); err != nil {
				return
			}
		}
	}()
}

func TestExpect_ReturnsTextBeforePrompt(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client, server := net.Pipe()
	defer server.Close()
	e := newExpecter(client, nil)

	feed(t, server, "Version: 1.2", ".3\r\nOK\r\nrk", "scli: ")
	i, before, err := e.expect(context.Background(), time.Second, literal("rkscli: "))
	require.NoError(t, err)
	require.Equal(t, 0, i)
	require.Equal(t, "Version: 1.2.3\r\nOK\r\n", before)

	require.NoError(t, e.close())
	_ = server.Close()
}

func TestExpect_ConsumesThroughMatch(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	e := newExpecter(client, nil)
	defer e.close()

	feed(t, server, "one# two# ")
	_, before, err := e.expect(context.Background(), time.Second, literal("# "))
	require.NoError(t, err)
	require.Equal(t, "one", before)
	_, before, err = e.expect(context.Background(), time.Second, literal("# "))
	require.NoError(t, err)
	require.Equal(t, "two", before)
}

func TestExpect_EarliestMatchWins(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	e := newExpecter(client, nil)
	defer e.close()

	re := regexp.MustCompile("Do you want to continue connecting.*")
	feed(t, server, "Host 'h' is not trusted.\r\nDo you want to continue connecting? (y/n) ")
	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.buf) > 0 && e.buf[len(e.buf)-1] == ' '
	}, time.Second, 5*time.Millisecond)

	i, before, err := e.expect(context.Background(), time.Second, regex(re), literal("password:"))
	require.NoError(t, err)
	require.Equal(t, 0, i)
	require.Equal(t, "Host 'h' is not trusted.\r\n", before)

	feed(t, server, "h's password: ")
	i, _, err = e.expect(context.Background(), time.Second, regex(re), literal("password:"))
	require.NoError(t, err)
	require.Equal(t, 1, i)
}

func TestExpect_Timeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	e := newExpecter(client, nil)
	defer e.close()

	feed(t, server, "still booting")
	_, _, err := e.expect(context.Background(), 30*time.Millisecond, literal("rkscli: "))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTimeout))
	require.Contains(t, err.Error(), `"rkscli: "`)
}

func TestExpect_StreamClosed(t *testing.T) {
	client, server := net.Pipe()
	e := newExpecter(client, nil)
	defer e.close()

	feed(t, server, "bye")
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = server.Close()
	}()
	_, _, err := e.expect(context.Background(), time.Second, literal("rkscli: "))
	require.True(t, errors.Is(err, ErrClosed))
	require.True(t, errors.Is(err, io.EOF))
}

func TestExpect_ContextCanceled(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	e := newExpecter(client, nil)
	defer e.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := e.expect(ctx, time.Second, literal("rkscli: "))
	require.ErrorIs(t, err, context.Canceled)
}

func TestExpect_SendLineMirrorsToDebug(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	var dbg lockedBuffer
	e := newExpecter(client, &dbg)

	got := make(chan string, 1)
	go func() {
		b := make([]byte, 64)
		n, _ := server.Read(b)
		got <- string(b[:n])
	}()
	require.NoError(t, e.sendLine("get version"))
	require.Equal(t, "get version\n", <-got)

	feed(t, server, "rkscli: ")
	_, _, err := e.expect(context.Background(), time.Second, literal("rkscli: "))
	require.NoError(t, err)
	require.NoError(t, e.close())
	require.Equal(t, "get version\nrkscli: ", dbg.String())
}

func TestPatternString(t *testing.T) {
	require.Equal(t, `"# "`, literal("# ").String())
	require.Equal(t, "a.*", regex(regexp.MustCompile("a.*")).String())
	require.Equal(t, `"# " or a.*`, describe([]pattern{literal("# "), regex(regexp.MustCompile("a.*"))}))
}
