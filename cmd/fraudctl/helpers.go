package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/fraudscore/internal/infrastructure/ml"
)

// addModelFlags registers the model flags; each falls back to the
// environment variable of the same name as the service uses.
func addModelFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().String("model", "", "model artifact path (env MODEL_PATH)")
	cmd.Flags().String("metadata", "", "model metadata path (env MODEL_METADATA_PATH)")
	cmd.Flags().String("remote", "", "remote classifier address (env MODEL_REMOTE_ADDR)")
	_ = v.BindPFlag("model_path", cmd.Flags().Lookup("model"))
	_ = v.BindPFlag("model_metadata_path", cmd.Flags().Lookup("metadata"))
	_ = v.BindPFlag("model_remote_addr", cmd.Flags().Lookup("remote"))
	v.SetDefault("model_timeout", 2*time.Second)
}

func loadModel(v *viper.Viper) ml.Loaded {
	return ml.Load(ml.Options{
		ModelPath:    v.GetString("model_path"),
		MetadataPath: v.GetString("model_metadata_path"),
		RemoteAddr:   v.GetString("model_remote_addr"),
		RemoteCA:     v.GetString("model_remote_ca"),
		Timeout:      v.GetDuration("model_timeout"),
	}, slog.Default())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
