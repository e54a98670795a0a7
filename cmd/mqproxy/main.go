// mqproxy relays multi-part messages bidirectionally between a frontend and
// a backend endpoint, optionally teeing a verbatim copy of every relayed
// frame to a capture endpoint. Endpoints are given as
// <mode>:<transport>:<address>; listen endpoints accept exactly one peer.
//
// Example:
//
//	mqproxy -frontend listen:tcp:127.0.0.1:5555 \
//	        -backend dial:tcp:10.0.0.2:5556 \
//	        -capture dial:ws:ws://monitor.local/tap \
//	        -metrics 127.0.0.1:9100
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpillora/requestlog"
	"github.com/jpillora/sizestr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sammck-go/logger"

	"github.com/rchockxm/netmq/pkg/mqnet"
	"github.com/rchockxm/netmq/pkg/netmq"
)

func die(f string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

// resolveSocket turns an endpoint spec into a live socket. Listen endpoints
// block until one peer connects; the relay topology is strictly pairwise.
func resolveSocket(lg logger.Logger, spec *EndpointSpec) (netmq.Socket, error) {
	dialCfg := mqnet.DialConfig{MaxRetryCount: 5}
	switch {
	case spec.Mode == "listen" && spec.Transport == "tcp":
		ln, err := mqnet.NewStreamListener(lg, "tcp", spec.Address)
		if err != nil {
			return nil, err
		}
		lg.ILogf("waiting for peer on %s", ln.Addr())
		s, err := ln.Accept()
		if err != nil {
			ln.StartShutdown(nil)
			return nil, err
		}
		// One peer per endpoint; detach it so shutting the listener down
		// leaves the socket alive.
		ln.Detach(s)
		ln.StartShutdown(nil)
		return s, nil
	case spec.Mode == "dial" && spec.Transport == "tcp":
		return mqnet.DialStream(lg, "tcp", spec.Address, dialCfg)
	case spec.Mode == "dial" && spec.Transport == "ws":
		return mqnet.DialWS(lg, spec.Address, dialCfg)
	}
	return nil, fmt.Errorf("unsupported endpoint %s:%s", spec.Mode, spec.Transport)
}

func serveMetrics(lg logger.Logger, addr string, reg *prometheus.Registry) {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	mux := http.NewServeMux()
	mux.Handle("/metrics", requestlog.Wrap(h))
	lg.ILogf("serving metrics on http://%s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		lg.ELogf("metrics server failed: %s", err)
	}
}

func main() {
	cliArgs := ParseCommandLineArguments()

	if cliArgs.Frontend == "" || cliArgs.Backend == "" {
		die("both -frontend and -backend are required")
	}
	var level logger.LogLevel
	if err := level.FromString(cliArgs.LogLevel); err != nil {
		die("%s", err)
	}
	lg, err := logger.New(
		logger.WithWriter(os.Stderr),
		logger.WithLogLevel(level),
		logger.WithPrefix("mqproxy"),
	)
	if err != nil {
		die("logger: %s", err)
	}

	frontSpec, err := ParseEndpointSpec(cliArgs.Frontend)
	if err != nil {
		die("%s", err)
	}
	backSpec, err := ParseEndpointSpec(cliArgs.Backend)
	if err != nil {
		die("%s", err)
	}

	frontend, err := resolveSocket(lg.ForkLog("frontend"), frontSpec)
	if err != nil {
		die("frontend: %s", err)
	}
	backend, err := resolveSocket(lg.ForkLog("backend"), backSpec)
	if err != nil {
		die("backend: %s", err)
	}

	opts := []netmq.ProxyOption{}
	if cliArgs.Capture != "" {
		capSpec, err := ParseEndpointSpec(cliArgs.Capture)
		if err != nil {
			die("%s", err)
		}
		capture, err := resolveSocket(lg.ForkLog("capture"), capSpec)
		if err != nil {
			die("capture: %s", err)
		}
		opts = append(opts, netmq.WithControl(capture))
	}

	reg := prometheus.NewRegistry()
	if cliArgs.MetricsAddr != "" {
		opts = append(opts, netmq.WithMetrics(reg))
		go serveMetrics(lg, cliArgs.MetricsAddr, reg)
	}

	proxy, err := netmq.NewProxy(lg, frontend, backend, opts...)
	if err != nil {
		die("%s", err)
	}

	// Stop from a signal goroutine; Start drives the internal reactor on the
	// main goroutine until then.
	signalsChannel := make(chan os.Signal, 2)
	signal.Notify(signalsChannel, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-signalsChannel
		lg.ILogf("received signal %s, stopping", s)
		if err := proxy.Stop(); err != nil {
			lg.ELogf("stop: %s", err)
			os.Exit(1)
		}
	}()

	lg.ILog("relaying")
	if err := proxy.Start(); err != nil {
		die("%s", err)
	}

	stats := proxy.Stats()
	lg.ILogf("done: %d messages (%s) to backend, %d messages (%s) to frontend, %d transport errors",
		stats.ToBackend.Messages, sizestr.ToString(int64(stats.ToBackend.Bytes)),
		stats.ToFrontend.Messages, sizestr.ToString(int64(stats.ToFrontend.Bytes)),
		stats.TransportErrors)
}
