// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022 Datadog, Inc.

// Package logrus provides an entrypoint handler logging failures through the
// sirupsen/logrus package (https://github.com/sirupsen/logrus).
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/DataDog/dd-entrypoint-go/entrypoint"
)

const (
	// FieldKind is "panic" or "error", depending on the kind of failure.
	FieldKind = "entrypoint.kind"
	// FieldValue holds the value passed to panic.
	FieldValue = "entrypoint.value"
)

// Handler returns a handler logging every failure of a protected call on
// logger at the error level. Returned errors and errors passed to panic are
// attached with WithError, other panic values under FieldValue.
func Handler(logger logrus.FieldLogger) entrypoint.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(v any) {
		switch v := v.(type) {
		case entrypoint.ErrorResult:
			logger.WithError(v.Err).WithField(FieldKind, "error").Error("protected call failed")
			return
		case error:
			logger.WithError(v).WithField(FieldKind, "panic").Error("protected call panicked")
			return
		}
		logger.WithFields(logrus.Fields{
			FieldKind:  "panic",
			FieldValue: v,
		}).Error("protected call panicked")
	}
}
