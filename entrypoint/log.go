// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package entrypoint

import "github.com/DataDog/dd-entrypoint-go/internal/log"

// Logger implementations are able to log given messages that the guard might output.
type Logger = log.Logger

// UseLogger sets l as the logger for all guard logs and returns a function
// which restores the previous logger.
func UseLogger(l Logger) (undo func()) {
	return log.UseLogger(l)
}
