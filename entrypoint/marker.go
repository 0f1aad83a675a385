// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

import "strings"

// TraceName prefixes the label of every span started by a protected call.
const TraceName = "protectedEntryPoint"

const (
	stackStart = "##PE_STACK_START##"
	stackBreak = "##STACK_BR##"
	stackEnd   = "##PE_STACK_END##"
)

// StackMarker embeds frames into a single-line marker,
// ##PE_STACK_START##frame##STACK_BR##frame...##PE_STACK_END##, which survives
// being written to log lines and markup.
func StackMarker(frames []string) string {
	body := strings.ReplaceAll(strings.Join(frames, "\n"), "\n", stackBreak)
	return stackStart + body + stackEnd
}

// ParseStackMarker extracts the frames of the first stack marker found in s.
func ParseStackMarker(s string) (frames []string, ok bool) {
	i := strings.Index(s, stackStart)
	if i < 0 {
		return nil, false
	}
	body := s[i+len(stackStart):]
	j := strings.Index(body, stackEnd)
	if j < 0 {
		return nil, false
	}
	body = body[:j]
	if body == "" {
		return []string{}, true
	}
	return strings.Split(body, stackBreak), true
}

// ParseTraceLabel splits a label given to Tracer.StartTrace into its name and
// the frames of the stack that created the protected function.
func ParseTraceLabel(label string) (name string, frames []string) {
	name = label
	if i := strings.Index(label, stackStart); i >= 0 {
		name = label[:i]
		frames, _ = ParseStackMarker(label[i:])
	}
	name = strings.TrimSuffix(strings.TrimSpace(name), ":")
	return name, frames
}

func traceLabel(frames []string) string {
	return TraceName + ": " + StackMarker(frames)
}
