package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"factcheck/internal/api"
	"factcheck/internal/daemon"
	"factcheck/internal/pipeline"
	"factcheck/internal/services"
)

type extractOutput struct {
	Transcript string   `json:"transcript"`
	Claims     []string `json:"claims"`
	Mode       string   `json:"mode,omitempty"`
}

type errorOutput struct {
	Error      api.APIError `json:"error"`
	Transcript *string      `json:"transcript,omitempty"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Show video metadata without downloading media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := urlArg(args)
			if err != nil {
				return err
			}
			return ctx.withComponents(cmd.Context(), func(c *daemon.Components) error {
				info, err := c.Pipeline.VideoInfo(cmd.Context(), url)
				if err != nil {
					return describeError(err)
				}
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, info)
				}
				rows := [][]string{
					{"Title", derefOr(info.Title, "-")},
					{"Thumbnail", derefOr(info.ThumbnailURL, "-")},
					{"ID", valueOr(info.ID, "-")},
					{"Uploader", valueOr(info.Uploader, "-")},
					{"Duration", formatSeconds(info.Duration)},
					{"URL", valueOr(info.WebpageURL, url)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
				return nil
			})
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "transcribe <url>",
		Short: "Download a video's audio and print its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := urlArg(args)
			if err != nil {
				return err
			}
			return ctx.withComponents(cmd.Context(), func(c *daemon.Components) error {
				transcript, err := c.Pipeline.Transcribe(cmd.Context(), url)
				if err != nil {
					return describeError(err)
				}
				text := transcript.String()
				out := cmd.OutOrStdout()
				if target := strings.TrimSpace(outputPath); target != "" {
					if err := os.WriteFile(target, []byte(text+"\n"), 0o644); err != nil {
						return fmt.Errorf("write transcript: %w", err)
					}
					fmt.Fprintf(out, "Wrote transcript (%d sentences) to %s\n", len(transcript.Units), target)
					return nil
				}
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, api.TranscriptResponse{Transcript: text})
				}
				fmt.Fprintln(out, text)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to a file instead of stdout")
	return cmd
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Transcribe a video and extract its checkable claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := urlArg(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateLLMCredentials(); err != nil {
				return err
			}
			return ctx.withComponents(cmd.Context(), func(c *daemon.Components) error {
				result, err := c.Pipeline.Extract(cmd.Context(), url)
				if err != nil {
					return reportExtractFailure(cmd, ctx, result, err)
				}
				return renderExtract(cmd, ctx, result)
			})
		},
	}
}

func renderExtract(cmd *cobra.Command, ctx *commandContext, result pipeline.Result) error {
	claims := []string(result.Claims)
	if claims == nil {
		claims = []string{}
	}
	if ctx.jsonOutput(cmd) {
		return writeJSON(cmd, extractOutput{
			Transcript: result.Transcript.String(),
			Claims:     claims,
			Mode:       string(result.Mode),
		})
	}
	out := cmd.OutOrStdout()
	if len(claims) == 0 {
		fmt.Fprintln(out, "No claims extracted.")
		return nil
	}
	rows := make([][]string, 0, len(claims))
	for i, claim := range claims {
		rows = append(rows, []string{strconv.Itoa(i + 1), claim})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Claim"}, rows, 0))
	fmt.Fprintf(out, "%d claims (%s parse)\n", len(claims), result.Mode)
	return nil
}

// reportExtractFailure keeps the transcript visible when only claim
// generation failed.
func reportExtractFailure(cmd *cobra.Command, ctx *commandContext, result pipeline.Result, err error) error {
	if !errors.Is(err, services.ErrGeneration) || result.Transcript.Empty() {
		return describeError(err)
	}
	transcript := result.Transcript.String()
	if ctx.jsonOutput(cmd) {
		if encErr := writeJSON(cmd, errorOutput{
			Error:      api.APIError{Message: err.Error(), Code: services.Kind(err)},
			Transcript: &transcript,
		}); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), transcript)
	}
	return describeError(err)
}

// describeError prefixes err with its diagnostic kind.
func describeError(err error) error {
	if err == nil {
		return nil
	}
	kind := services.Kind(err)
	if kind == "" || kind == services.KindCanceled {
		return err
	}
	return fmt.Errorf("%s: %w", kind, err)
}

func urlArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("video url is required")
	}
	url := strings.TrimSpace(args[0])
	if url == "" {
		return "", errors.New("video url is required")
	}
	return url, nil
}

func derefOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return valueOr(*value, fallback)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds * float64(time.Second))).Truncate(time.Second).String()
}
