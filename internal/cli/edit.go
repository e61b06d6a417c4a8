package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/timeline"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit an SRT subtitle timeline",
	Long: `Edit the segments of an SRT subtitle file.

Each subcommand loads the file, applies one operation, and writes the
result back in place (or to --output). Segments are addressed by their
1-based index as shown by "edit show". Timestamps use the HH:MM:SS.mmm
form; a comma before the milliseconds is also accepted.

Examples:
  autodub edit show subtitles.srt
  autodub edit crop subtitles.srt -n 3 --edge end --to 00:01:02.500
  autodub edit retime subtitles.srt -n 3 --start 00:01:00.000 --end 00:01:04.250
  autodub edit merge subtitles.srt --segments 4,5
  autodub edit split subtitles.srt -n 2 --at 00:00:12.000
  autodub edit split subtitles.srt -n 2 --cursor 24
  autodub edit insert subtitles.srt --after 3 --text "New line"
  autodub edit set-text subtitles.srt -n 7 --text "Corrected line"
  autodub edit delete subtitles.srt -n 9`,
}

var editShowCmd = &cobra.Command{
	Use:   "show [subtitle_file]",
	Short: "List the segments of a subtitle file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditShow,
}

var editCropCmd = &cobra.Command{
	Use:   "crop [subtitle_file]",
	Short: "Move one boundary of a segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditCrop,
}

var editRetimeCmd = &cobra.Command{
	Use:   "retime [subtitle_file]",
	Short: "Set both boundaries of a segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditRetime,
}

var editMergeCmd = &cobra.Command{
	Use:   "merge [subtitle_file]",
	Short: "Merge segments into one",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditMerge,
}

var editSplitCmd = &cobra.Command{
	Use:   "split [subtitle_file]",
	Short: "Split a segment in two",
	Long: `Split a segment in two, either at a playback position (--at) or at a
character position in its text (--cursor).

A time split keeps the full text in both halves for later editing. A
cursor split divides the text and places the boundary at the matching
fraction of the segment's span.`,
	Args: cobra.ExactArgs(1),
	RunE: runEditSplit,
}

var editInsertCmd = &cobra.Command{
	Use:   "insert [subtitle_file]",
	Short: "Insert a new segment",
	Long: `Insert a new segment after the addressed one, or at the end of the
timeline with --after 0. The segment starts where its predecessor ends
and runs for five seconds, clipped to the next segment's start.`,
	Args: cobra.ExactArgs(1),
	RunE: runEditInsert,
}

var editSetTextCmd = &cobra.Command{
	Use:   "set-text [subtitle_file]",
	Short: "Replace the text of a segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditSetText,
}

var editDeleteCmd = &cobra.Command{
	Use:   "delete [subtitle_file]",
	Short: "Delete a segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditDelete,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.AddCommand(editShowCmd)
	editCmd.AddCommand(editCropCmd)
	editCmd.AddCommand(editRetimeCmd)
	editCmd.AddCommand(editMergeCmd)
	editCmd.AddCommand(editSplitCmd)
	editCmd.AddCommand(editInsertCmd)
	editCmd.AddCommand(editSetTextCmd)
	editCmd.AddCommand(editDeleteCmd)

	editCropCmd.Flags().IntP("segment", "n", 0, "Segment index (1-based)")
	editCropCmd.Flags().String("edge", "", "Boundary to move: start or end")
	editCropCmd.Flags().String("to", "", "New boundary time (HH:MM:SS.mmm)")
	_ = editCropCmd.MarkFlagRequired("segment")
	_ = editCropCmd.MarkFlagRequired("edge")
	_ = editCropCmd.MarkFlagRequired("to")

	editRetimeCmd.Flags().IntP("segment", "n", 0, "Segment index (1-based)")
	editRetimeCmd.Flags().String("start", "", "New start time (HH:MM:SS.mmm)")
	editRetimeCmd.Flags().String("end", "", "New end time (HH:MM:SS.mmm)")
	_ = editRetimeCmd.MarkFlagRequired("segment")
	_ = editRetimeCmd.MarkFlagRequired("start")
	_ = editRetimeCmd.MarkFlagRequired("end")

	editMergeCmd.Flags().IntSlice("segments", nil, "Segment indices to merge (e.g., 4,5)")
	_ = editMergeCmd.MarkFlagRequired("segments")

	editSplitCmd.Flags().IntP("segment", "n", 0, "Segment index (1-based)")
	editSplitCmd.Flags().String("at", "", "Playback position to split at (HH:MM:SS.mmm)")
	editSplitCmd.Flags().Int("cursor", 0, "Character position in the text to split at")
	_ = editSplitCmd.MarkFlagRequired("segment")

	editInsertCmd.Flags().Int("after", 0, "Insert after this segment (0 appends at the end)")
	editInsertCmd.Flags().String("text", "", "Text for the new segment")

	editSetTextCmd.Flags().IntP("segment", "n", 0, "Segment index (1-based)")
	editSetTextCmd.Flags().String("text", "", "Replacement text")
	_ = editSetTextCmd.MarkFlagRequired("segment")
	_ = editSetTextCmd.MarkFlagRequired("text")

	editDeleteCmd.Flags().IntP("segment", "n", 0, "Segment index (1-based)")
	_ = editDeleteCmd.MarkFlagRequired("segment")
}

// loadSubtitleArg validates and parses the subtitle file argument
// shared by every edit subcommand.
func loadSubtitleArg(path string) (*timeline.Timeline, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".srt" {
		return nil, fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	tl, err := timeline.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	return tl, nil
}

// writeSubtitleResult writes the edited timeline back, in place unless
// --output names another file.
func writeSubtitleResult(cmd *cobra.Command, tl *timeline.Timeline, inputPath string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = inputPath
	}

	if err := tl.WriteFile(outputPath); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles updated successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", tl.Len())

	return nil
}

// parseEdge reads a crop boundary name.
func parseEdge(s string) (timeline.Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return timeline.EdgeStart, nil
	case "end":
		return timeline.EdgeEnd, nil
	default:
		return "", fmt.Errorf("invalid edge %q: use start or end", s)
	}
}

func runEditShow(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Duration", "Text"})
	for _, seg := range tl.Segments {
		line := strings.ReplaceAll(seg.Text, "\n", " | ")
		tw.AppendRow(table.Row{
			seg.Index,
			timeline.FormatTimestamp(seg.StartMS),
			timeline.FormatTimestamp(seg.EndMS),
			fmt.Sprintf("%.3fs", float64(seg.DurationMS())/1000),
			line,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	fmt.Println(tw.Render())
	fmt.Printf("%d segments, ending at %s\n",
		tl.Len(),
		timeline.FormatTimestamp(timelineEnd(tl).Milliseconds()),
	)

	return nil
}

func runEditCrop(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	index, _ := cmd.Flags().GetInt("segment")
	edgeStr, _ := cmd.Flags().GetString("edge")
	toStr, _ := cmd.Flags().GetString("to")

	edge, err := parseEdge(edgeStr)
	if err != nil {
		return err
	}
	ms, err := timeline.ParseTimestamp(toStr)
	if err != nil {
		return err
	}

	if err := tl.Crop(index, edge, ms); err != nil {
		return err
	}

	return writeSubtitleResult(cmd, tl, args[0])
}

func runEditRetime(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	index, _ := cmd.Flags().GetInt("segment")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")

	startMS, err := timeline.ParseTimestamp(startStr)
	if err != nil {
		return err
	}
	endMS, err := timeline.ParseTimestamp(endStr)
	if err != nil {
		return err
	}

	if err := tl.Retime(index, startMS, endMS); err != nil {
		return err
	}

	return writeSubtitleResult(cmd, tl, args[0])
}

func runEditMerge(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	indices, _ := cmd.Flags().GetIntSlice("segments")

	merged, removed, err := tl.Merge(indices)
	if err != nil {
		return err
	}

	logger.Infow("Merged segments",
		"into", merged.Index,
		"removed", removed,
	)

	return writeSubtitleResult(cmd, tl, args[0])
}

func runEditSplit(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	index, _ := cmd.Flags().GetInt("segment")
	atStr, _ := cmd.Flags().GetString("at")
	cursor, _ := cmd.Flags().GetInt("cursor")

	hasAt := cmd.Flags().Changed("at")
	hasCursor := cmd.Flags().Changed("cursor")
	if hasAt == hasCursor {
		return fmt.Errorf("split needs exactly one of --at or --cursor")
	}

	if hasAt {
		ms, err := timeline.ParseTimestamp(atStr)
		if err != nil {
			return err
		}
		if _, _, err := tl.SplitAt(index, ms); err != nil {
			return err
		}
	} else {
		if _, _, err := tl.SplitText(index, cursor); err != nil {
			return err
		}
	}

	return writeSubtitleResult(cmd, tl, args[0])
}

func runEditInsert(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	after, _ := cmd.Flags().GetInt("after")
	text, _ := cmd.Flags().GetString("text")

	seg, err := tl.InsertAfter(after)
	if err != nil {
		return err
	}
	if text != "" {
		tl.Segments[seg.Index-1].Text = text
	}

	logger.Infow("Inserted segment",
		"index", seg.Index,
		"start", timeline.FormatTimestamp(seg.StartMS),
		"end", timeline.FormatTimestamp(seg.EndMS),
	)

	return writeSubtitleResult(cmd, tl, args[0])
}

func runEditSetText(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	index, _ := cmd.Flags().GetInt("segment")
	text, _ := cmd.Flags().GetString("text")

	if index < 1 || index > tl.Len() {
		return fmt.Errorf("no segment with index %d", index)
	}
	tl.Segments[index-1].Text = text

	return writeSubtitleResult(cmd, tl, args[0])
}

func runEditDelete(cmd *cobra.Command, args []string) error {
	tl, err := loadSubtitleArg(args[0])
	if err != nil {
		return err
	}

	index, _ := cmd.Flags().GetInt("segment")

	if err := tl.Delete(index); err != nil {
		return err
	}

	return writeSubtitleResult(cmd, tl, args[0])
}
