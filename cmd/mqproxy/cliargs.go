package main

import (
	"flag"
	"fmt"
	"strings"
)

// EndpointSpec describes how to obtain one proxy socket. The CLI syntax is
// "<mode>:<transport>:<address>", e.g. "listen:tcp:127.0.0.1:5555",
// "dial:tcp:10.0.0.2:5556", or "dial:ws:ws://host/relay". The ws transport
// only supports dial mode.
type EndpointSpec struct {
	Mode      string // "listen" or "dial"
	Transport string // "tcp" or "ws"
	Address   string
}

func ParseEndpointSpec(s string) (*EndpointSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("bad endpoint %q: expect <mode>:<transport>:<address>", s)
	}
	spec := &EndpointSpec{Mode: parts[0], Transport: parts[1], Address: parts[2]}
	if spec.Mode != "listen" && spec.Mode != "dial" {
		return nil, fmt.Errorf("bad endpoint %q: mode must be listen or dial", s)
	}
	switch spec.Transport {
	case "tcp":
	case "ws":
		if spec.Mode != "dial" {
			return nil, fmt.Errorf("bad endpoint %q: ws transport only supports dial", s)
		}
	default:
		return nil, fmt.Errorf("bad endpoint %q: transport must be tcp or ws", s)
	}
	return spec, nil
}

type CommandLineArguments struct {
	Frontend    string
	Backend     string
	Capture     string
	MetricsAddr string
	LogLevel    string
}

func ParseCommandLineArguments() *CommandLineArguments {
	cliArgs := CommandLineArguments{}

	flag.StringVar(&cliArgs.Frontend, "frontend", "", "frontend endpoint, <mode>:<transport>:<address> (required)")
	flag.StringVar(&cliArgs.Backend, "backend", "", "backend endpoint, <mode>:<transport>:<address> (required)")
	flag.StringVar(&cliArgs.Capture, "capture", "", "optional capture endpoint receiving a copy of all relayed frames")
	flag.StringVar(&cliArgs.MetricsAddr, "metrics", "", "optional listen address for Prometheus metrics over HTTP")
	flag.StringVar(&cliArgs.LogLevel, "log-level", "info", "log level: error, warning, info, debug, or trace")
	flag.Parse()

	return &cliArgs
}
