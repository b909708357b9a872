// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ivoyant-eng/AgnusAi/internal/feedback"
)

var (
	servePort int

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the feedback HTTP endpoint",
		Long: `serve exposes GET /feedback, the only HTTP surface this core owns: the
link a posted review comment carries for a reviewer to mark it accepted
or rejected. Webhook ingestion, authentication, and the dashboard are
hosted separately and are not this command's concern.`,
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8089, "HTTP port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	if !comps.Signer.Enabled() {
		comps.Logger.Warn("feedback base_url or secret is unset; /feedback will reject every request")
	}

	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := feedback.NewHandler(comps.Signer, comps.Storage, comps.Logger)
	handler.Register(router)

	addr := fmt.Sprintf(":%d", servePort)
	comps.Logger.Info("starting feedback server", "addr", addr)
	return router.Run(addr)
}
