package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	osSignal "os/signal"
	"strconv"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		t.Fatalf("release port: %v", err)
	}
	return port
}

func getStatus(url string) (int, error) {
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func TestRunServeShutsDownOnSignal(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "")
	path := writeProblems(t)
	port := strconv.Itoa(freePort(t))
	base := "http://127.0.0.1:" + port

	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	// The stub waits until the problems API answers, then delivers SIGTERM.
	served := make(chan int, 1)
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			status := 0
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if code, err := getStatus(base + "/api/problems/3"); err == nil {
					status = code
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			served <- status
			ch <- syscall.SIGTERM
		}()
	}

	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), []string{
			"serve", "--backend=file", "--problems-file=" + path, "--log-level=error",
			"--port=" + port, "--rate-limit-rps=0",
		}, io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not return after SIGTERM")
	}

	if status := <-served; status != http.StatusOK {
		t.Fatalf("expected problem 3 to be served before shutdown, got status %d", status)
	}
	if _, err := getStatus(base + "/api/health"); err == nil {
		t.Fatalf("expected server to stop accepting connections after shutdown")
	}
}

func TestShutdownForcesCloseAfterGracePeriod(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- syscall.SIGINT
		}()
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	hold := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-hold
	})}
	go func() {
		_ = server.Serve(l)
	}()
	t.Cleanup(func() {
		close(hold)
	})

	// An in-flight request keeps graceful shutdown from finishing within the grace period.
	go func() {
		_, _ = getStatus("http://" + l.Addr().String() + "/slow")
	}()
	time.Sleep(50 * time.Millisecond)

	finished := make(chan struct{})
	go func() {
		shutdown(server, 10*time.Millisecond, zaptest.NewLogger(t))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected shutdown to force close after the grace period")
	}
	if _, err := getStatus("http://" + l.Addr().String() + "/api/health"); err == nil {
		t.Fatalf("expected listener to be closed")
	}
}
