package main

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"text/template"

	"github.com/woozymasta/geofield/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Dir string `short:"d" long:"dir" env:"ASSETS_DIR" description:"Assets directory" default:"assets"`
}

// PageData fills index.html.tpl. SVG is URL-escaped for a data URI.
type PageData struct {
	CSS string
	JS  string
	SVG string
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	out := filepath.Join(opts.Dir, "index.html")
	size, err := build(opts.Dir, out)
	if err != nil {
		log.Fatal().Err(err).Str("dir", opts.Dir).Msg("Failed to build index page")
	}

	log.Info().Str("path", out).Int("bytes", size).Msg("Minify done")
}

func build(dir, out string) (int, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	read := func(name, mediatype string) (string, error) {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		minified, err := m.String(mediatype, string(raw))
		if err != nil {
			return "", fmt.Errorf("minify %s: %w", name, err)
		}
		return minified, nil
	}

	var data PageData
	var err error
	if data.CSS, err = read("style.css", "text/css"); err != nil {
		return 0, err
	}
	if data.JS, err = read("script.js", "text/javascript"); err != nil {
		return 0, err
	}
	if data.SVG, err = read("marker.svg", "image/svg+xml"); err != nil {
		return 0, err
	}
	data.SVG = url.PathEscape(data.SVG)

	tpl, err := template.ParseFiles(filepath.Join(dir, "index.html.tpl"))
	if err != nil {
		return 0, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return 0, fmt.Errorf("execute template: %w", err)
	}

	page, err := m.String("text/html", buf.String())
	if err != nil {
		return 0, fmt.Errorf("minify page: %w", err)
	}

	if err := os.WriteFile(out, []byte(page), 0644); err != nil {
		return 0, err
	}
	return len(page), nil
}
