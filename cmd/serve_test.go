package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestRunServer_InvalidCORS(t *testing.T) {
	viper.Set("server.cors_origins", []string{"no-scheme.example"})
	defer viper.Set("server.cors_origins", []string{"*"})

	err := RunServer(serveCmd, nil)
	assert.ErrorContains(t, err, "invalid cors config")
}

func TestStringList(t *testing.T) {
	viper.Set("ingest.extensions", []string{".txt, .md", " ", ".pdf"})
	defer viper.Set("ingest.extensions", []string{".txt"})

	assert.Equal(t, []string{".txt", ".md", ".pdf"}, stringList("ingest.extensions"))
}
