// Command mockapi runs the stand-in storefront backend for local demos.
package main

import (
	"flag"
	"net/http"

	"github.com/Mohamedmnem11/ivita/internal/mockapi"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	flag.Parse()

	log := logger.NewDefault("mockapi")
	log.WithField("addr", *addr).Info("mock storefront API listening")

	server := mockapi.New()
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		log.WithError(err).Error("server exited")
	}
}
