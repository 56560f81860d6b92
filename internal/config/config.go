package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Addr      string
	DBPath    string
	UploadDir string

	// Seed values for the provider row created on first run.
	SeedProviderHost string
	SeedProviderKey  string
	SeedModelName    string
}

func Load() Config {
	addr := os.Getenv("AIAIO_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	dbPath := os.Getenv("AIAIO_DB_PATH")
	if dbPath == "" {
		dbPath = "chatbot.db"
	}

	uploadDir := os.Getenv("AIAIO_UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "aiaio_uploads")
	}

	host := os.Getenv("AIAIO_PROVIDER_HOST")
	if host == "" {
		host = "http://localhost:8000/v1"
	}

	model := os.Getenv("AIAIO_MODEL_NAME")
	if model == "" {
		model = "meta-llama/Llama-3.2-1B-Instruct"
	}

	return Config{
		Addr:      addr,
		DBPath:    dbPath,
		UploadDir: uploadDir,

		SeedProviderHost: host,
		SeedProviderKey:  os.Getenv("AIAIO_PROVIDER_API_KEY"),
		SeedModelName:    model,
	}
}
