package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"CaptionBoard/internal/ui"
)

func main() {
	autosave := flag.String("autosave", defaultAutosavePath(), "session autosave file (empty to disable)")
	flag.Parse()

	imagePath := ""
	if flag.NArg() > 0 {
		imagePath = flag.Arg(0)
	}

	log.Println("Starting CaptionBoard")
	ui.RunApp(imagePath, *autosave)
}

func defaultAutosavePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("No user config dir, autosave disabled: %v", err)
		return ""
	}
	dir = filepath.Join(dir, "captionboard")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Could not create %s, autosave disabled: %v", dir, err)
		return ""
	}
	return filepath.Join(dir, "session.json")
}
