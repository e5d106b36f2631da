// Attraction field preview tool: samples the configured planets' net
// attraction over a plane, writes it as CSV and optionally shows it as a
// heat map with a slider for the plane offset.
//
// Usage: go run ./cmd/fieldpreview -out field.csv [-view]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/systems"
)

const (
	windowWidth  = 900
	windowHeight = 620
	previewSize  = 512
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	out := flag.String("out", "", "CSV output path (empty = no file)")
	axis := flag.String("axis", "z", "Plane normal: x, y or z")
	offset := flag.Float64("offset", 0, "Plane offset along the normal")
	extent := flag.Float64("extent", 0, "Half-width of the sampled square (0 = largest attraction radius)")
	resolution := flag.Int("resolution", 128, "Samples per side")
	view := flag.Bool("view", false, "Open an interactive heat map")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	field := NewField(cfg)

	plane := Plane{Axis: *axis, Offset: *offset, Extent: *extent, Resolution: *resolution}
	if plane.Extent <= 0 {
		plane.Extent = LargestRadius(field)
	}
	if err := plane.Validate(); err != nil {
		slog.Error("invalid plane", "error", err)
		os.Exit(1)
	}

	if *out != "" {
		samples := Sample(field, plane)
		if err := writeCSV(*out, samples); err != nil {
			slog.Error("failed to write samples", "error", err)
			os.Exit(1)
		}
		slog.Info("field sampled", "path", *out, "samples", len(samples))
	}

	if *view {
		runViewer(field, plane)
	}
}

func writeCSV(path string, samples []FieldSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&samples, f)
}

func runViewer(field *systems.AttractionField, plane Plane) {
	rl.InitWindow(windowWidth, windowHeight, "Attraction Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(plane.Resolution, plane.Resolution, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	samples := Sample(field, plane)
	peak := updateTexture(texture, samples)
	needsRegen := false

	for !rl.WindowShouldClose() {
		if needsRegen {
			samples = Sample(field, plane)
			peak = updateTexture(texture, samples)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		res := float32(plane.Resolution)
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: res, Height: res},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Peak pull: %.3f  Plane: %s = %.1f", peak, plane.Axis, plane.Offset),
			15, previewSize+25, 16, rl.DarkGray)

		panelX := float32(previewSize + 30)
		panelY := float32(10)
		panelWidth := float32(windowWidth) - panelX - 20

		rl.DrawText("Plane", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Offset along normal", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newOffset := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			"", "",
			float32(plane.Offset), float32(-plane.Extent), float32(plane.Extent),
		)
		if float64(newOffset) != plane.Offset {
			plane.Offset = float64(newOffset)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Extent", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newExtent := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			"", fmt.Sprintf("%.0f", plane.Extent),
			float32(plane.Extent), 10, float32(LargestRadius(field)*2),
		)
		if float64(newExtent) != plane.Extent {
			plane.Extent = float64(newExtent)
			needsRegen = true
		}
		panelY += 45

		for i, a := range []string{"x", "y", "z"} {
			label := "Normal " + a
			if a == plane.Axis {
				label = "* " + label
			}
			if gui.Button(rl.Rectangle{X: panelX + float32(i)*90, Y: panelY, Width: 80, Height: 30}, label) {
				plane.Axis = a
				needsRegen = true
			}
		}

		rl.EndDrawing()
	}
}

// updateTexture shades each sample by its pull relative to the peak and
// returns the peak.
func updateTexture(texture rl.Texture2D, samples []FieldSample) float64 {
	peak := 0.0
	for _, s := range samples {
		peak = max(peak, s.Magnitude)
	}

	pixels := make([]color.RGBA, len(samples))
	for i, s := range samples {
		t := 0.0
		if peak > 0 {
			t = s.Magnitude / peak
		}
		if s.Inside {
			pixels[i] = color.RGBA{R: 40, G: 40, B: 40, A: 255}
			continue
		}
		pixels[i] = color.RGBA{
			R: uint8(10 + t*230),
			G: uint8(20 + t*180),
			B: uint8(80 + t*60),
			A: 255,
		}
	}
	rl.UpdateTexture(texture, pixels)
	return peak
}
