/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/cursorgrid/session"
)

// cspHome relaxes the policy for the home page's inline stylesheet.
func cspHome(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
}

func homeBody(cfg *Config, joinURL string) string {
	grid := cfg.grid()

	return fmt.Sprintf(`<h1>cursorgrid</h1>
<p>A %dx%d grid of %dpx tiles. Everyone who joins sees everyone else's cursor.</p>
<p>Join from a desktop with <code>cursorgrid join --url %s --name you</code>,
or scan the code below on another machine.</p>
<p><img src="%s/qr" alt="join QR code" width="320" height="320"></p>
<p><a href="%s/version">version</a></p>`,
		grid.Cols, grid.Rows, grid.TileSize,
		html.EscapeString(joinURL),
		cfg.prefix, cfg.prefix)
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		cspHome(w)

		written, err := io.WriteString(w, newPage("cursorgrid", homeBody(cfg, joinURL(cfg, r))))
		if err != nil {
			errs <- err

			return
		}

		logf("SERVE: Home page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: ` + cfg.prefix + `/ws
Disallow: ` + cfg.prefix + `/admin/
Disallow: ` + cfg.prefix + `/qr

User-agent: GPTBot
Disallow: /

User-agent: CCBot
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}

// serveSnapshot answers with the admin snapshot as JSON, for callers that
// would rather poll than hold a socket open.
func serveSnapshot(cfg *Config, hub *session.Hub, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		snap, err := hub.Snapshot(r.Context())
		if err != nil {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)

			return
		}

		data, err := json.Marshal(snap)
		if err != nil {
			errs <- err

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}
