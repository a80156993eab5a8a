/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// logf writes a tagged debug line, shown only with --verbose.
func logf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

func errorf(err error, format string, args ...any) {
	log.Error().Err(err).Msgf(format, args...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body{margin:0;padding:1em;font-family:sans-serif;background:#101214;color:#e6e6e6;}`)
	htmlBody.WriteString(`a{color:inherit;}code{background:#1e2226;padding:0.1em 0.3em;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body>%s</body></html>", body))

	return htmlBody.String()
}
