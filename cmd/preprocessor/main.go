package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"rgehrsitz/pilc/internal/logging"
	"rgehrsitz/pilc/pkg/preprocessor"
)

func main() {
	if err := logging.Setup(os.Getenv("PILC_LOG_LEVEL"), "console"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// The first argument is the definitions file, the optional second one the
	// output path.
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: preprocessor <definitions.json> [output.json]")
		os.Exit(2)
	}
	inputFilePath := os.Args[1]

	data, err := os.ReadFile(inputFilePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", inputFilePath).Msg("Error reading definitions file")
	}

	normalized, err := preprocessor.Normalize(data)
	if err != nil {
		var formErr *preprocessor.IncompleteFormError
		if errors.As(err, &formErr) {
			fmt.Fprintln(os.Stderr, formErr.Message())
			for _, p := range formErr.Problems {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", p.Field, p.Reason)
			}
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Error validating definitions")
	}

	if len(os.Args) < 3 {
		fmt.Println(string(normalized))
		return
	}
	if err := os.WriteFile(os.Args[2], append(normalized, '\n'), 0644); err != nil {
		log.Fatal().Err(err).Msg("Error writing normalized definitions")
	}
	log.Info().Str("file", os.Args[2]).Msg("Definitions are valid")
}
