package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/feature"
)

func predictCmd(v *viper.Viper) *cobra.Command {
	var record string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one JSON record from --record or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = strings.NewReader(record)
			if record == "" {
				in = cmd.InOrStdin()
			}
			raw, err := readRecord(in)
			if err != nil {
				return err
			}

			loaded := loadModel(v)
			defer loaded.Close()

			resp, err := usecase.NewPredict(loaded.Scorer, loaded.Source, nil, nil).Execute(cmd.Context(), raw)
			if err != nil {
				var verr *feature.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("invalid record: %s", verr.Error())
				}
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&record, "record", "", `record as JSON, e.g. '{"amount": 120}'`)
	addModelFlags(cmd, v)
	return cmd
}

func readRecord(r io.Reader) (feature.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw feature.RawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	if raw == nil {
		return nil, errors.New("record is not a JSON object")
	}
	return raw, nil
}
