package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/boxapi-go/boxapi/internal/box"
)

// downloadPerms is the mode for files written by get.
const downloadPerms = 0o644

// stdoutPath makes get write the content to standard output.
const stdoutPath = "-"

func newMkdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runMkdir,
	}

	cmd.Flags().String("parent", "0", "parent folder ID (0 is the root folder)")

	return cmd
}

func newFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folder [folder-id]",
		Short: "Show a folder and list its entries",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFolder,
	}
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path>",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runPut,
	}

	cmd.Flags().String("parent", "0", "destination folder ID (0 is the root folder)")

	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file-id> [local-path]",
		Short: "Download a file",
		Long: `Download a file by ID. Without a local path the file is saved under its
Box name in the current directory. Use "-" to write to standard output.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runGet,
	}

	cmd.Flags().String("version", "", "download this version ID instead of the current one")

	return cmd
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <file-id>",
		Short: "Display file metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runStat,
	}
}

func newPutVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put-version <local-path> <file-id>",
		Short: "Upload a new version of an existing file",
		Long: `Upload a new version of an existing file. The upload is conditional on
the file's etag; without --etag the current etag is read first.`,
		Args: cobra.ExactArgs(2),
		RunE: runPutVersion,
	}

	cmd.Flags().Int64("etag", 0, "expected etag of the current version")

	return cmd
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <file-id>",
		Short: "List previous versions of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runVersions,
	}
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}

	cmd.Flags().Int64("etag", 0, "only delete if the file's etag matches")

	return cmd
}

// parseIDArg parses a numeric object ID from a command argument or flag.
func parseIDArg(what, s string) (box.ID, error) {
	id, err := box.ParseID(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}

	return id, nil
}

// parentFlag reads --parent as a folder ID.
func parentFlag(cmd *cobra.Command) (box.ID, error) {
	s, _ := cmd.Flags().GetString("parent")
	return parseIDArg("parent folder ID", s)
}

// decodeItem converts a single-object response into an Item.
func decodeItem(res *box.Result) (*box.Item, error) {
	rec, ok := res.Record()
	if !ok {
		return nil, fmt.Errorf("unexpected response: %q", res.Bytes())
	}

	var item box.Item
	if err := rec.Decode(&item); err != nil {
		return nil, err
	}

	return &item, nil
}

// printResult writes the raw API response in --json mode, otherwise calls text.
func printResult(cc *CLIContext, res *box.Result, text func() error) error {
	if !cc.Flags.JSON {
		return text()
	}

	if res.Data != nil {
		return printJSON(cc.Out, res.Data)
	}

	_, err := cc.Out.Write(res.Bytes())

	return err
}

func runMkdir(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	parent, err := parentFlag(cmd)
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	cc.Logger.Debug("mkdir", slog.String("name", args[0]), slog.String("parent", parent.String()))

	res, err := session.CreateFolder(cmd.Context(), args[0], parent)
	if err != nil {
		return fmt.Errorf("creating folder %q: %w", args[0], err)
	}

	return printResult(cc, res, func() error {
		item, err := decodeItem(res)
		if err != nil {
			return err
		}

		cc.Statusf("Created %s (id %s)\n", item.Name, item.ID)

		return nil
	})
}

func runFolder(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	folderID := box.RootFolder

	if len(args) == 1 {
		id, err := parseIDArg("folder ID", args[0])
		if err != nil {
			return err
		}

		folderID = id
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	res, err := session.FolderInfo(cmd.Context(), folderID)
	if err != nil {
		return fmt.Errorf("reading folder %s: %w", folderID, err)
	}

	return printResult(cc, res, func() error {
		return printFolderText(cc, res)
	})
}

func printFolderText(cc *CLIContext, res *box.Result) error {
	item, err := decodeItem(res)
	if err != nil {
		return err
	}

	fmt.Fprintf(cc.Out, "%s (id %s)\n\n", item.Name, item.ID)

	rec, _ := res.Record()
	collection, _ := rec["item_collection"].(map[string]any)

	rows := make([][]string, 0)

	for _, entry := range box.Record(collection).Entries() {
		var child box.Item
		if err := entry.Decode(&child); err != nil {
			return err
		}

		name := child.Name
		size := formatSize(child.Size)

		if child.IsFolder() {
			name += "/"
			size = "-"
		}

		rows = append(rows, []string{child.ID.String(), child.Type, size, name})
	}

	printTable(cc.Out, []string{"ID", "TYPE", "SIZE", "NAME"}, rows)

	return nil
}

func runPut(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	parent, err := parentFlag(cmd)
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	res, err := session.UploadFile(cmd.Context(), args[0], parent)
	if err != nil {
		return fmt.Errorf("uploading %q: %w", args[0], err)
	}

	return printResult(cc, res, func() error {
		return printUploaded(cc, res)
	})
}

// printUploaded reports each file in an upload response.
func printUploaded(cc *CLIContext, res *box.Result) error {
	rec, ok := res.Record()
	if !ok {
		cc.Statusf("Uploaded.\n")
		return nil
	}

	for _, entry := range rec.Entries() {
		var item box.Item
		if err := entry.Decode(&item); err != nil {
			return err
		}

		cc.Statusf("Uploaded %s (id %s, %s)\n", item.Name, item.ID, formatSize(item.Size))
	}

	return nil
}

// getJSONOutput is the JSON schema for `get --json`.
type getJSONOutput struct {
	ID   box.ID `json:"id"`
	Path string `json:"path"`
	Size int    `json:"size"`
}

func runGet(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	fileID, err := parseIDArg("file ID", args[0])
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	localPath := ""
	if len(args) == 2 {
		localPath = args[1]
	}

	if localPath == "" {
		info, err := session.FileInfo(ctx, fileID)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", fileID, err)
		}

		item, err := decodeItem(info)
		if err != nil {
			return err
		}

		localPath = filepath.Base(item.Name)
	}

	var res *box.Result

	if v, _ := cmd.Flags().GetString("version"); v != "" {
		versionID, err := parseIDArg("version ID", v)
		if err != nil {
			return err
		}

		res, err = session.DownloadFileVersion(ctx, fileID, versionID)
		if err != nil {
			return fmt.Errorf("downloading file %s version %s: %w", fileID, versionID, err)
		}
	} else {
		res, err = session.DownloadFile(ctx, fileID)
		if err != nil {
			return fmt.Errorf("downloading file %s: %w", fileID, err)
		}
	}

	data := res.Bytes()

	if localPath == stdoutPath {
		_, err := cc.Out.Write(data)
		return err
	}

	if err := afero.WriteFile(cc.Fs, localPath, data, downloadPerms); err != nil {
		return fmt.Errorf("writing %s: %w", localPath, err)
	}

	cc.Logger.Debug("download complete", slog.String("path", localPath), slog.Int("bytes", len(data)))

	if cc.Flags.JSON {
		return printJSON(cc.Out, getJSONOutput{ID: fileID, Path: localPath, Size: len(data)})
	}

	cc.Statusf("Downloaded %s (%s)\n", localPath, formatSize(int64(len(data))))

	return nil
}

func runStat(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	fileID, err := parseIDArg("file ID", args[0])
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	res, err := session.FileInfo(cmd.Context(), fileID)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", fileID, err)
	}

	return printResult(cc, res, func() error {
		item, err := decodeItem(res)
		if err != nil {
			return err
		}

		printStatText(cc, item)

		return nil
	})
}

func printStatText(cc *CLIContext, item *box.Item) {
	fmt.Fprintf(cc.Out, "Name:     %s\n", item.Name)
	fmt.Fprintf(cc.Out, "Type:     %s\n", item.Type)
	fmt.Fprintf(cc.Out, "ID:       %s\n", item.ID)
	fmt.Fprintf(cc.Out, "Size:     %s (%d bytes)\n", formatSize(item.Size), item.Size)
	fmt.Fprintf(cc.Out, "ETag:     %s\n", item.ETag)
	fmt.Fprintf(cc.Out, "Modified: %s\n", formatTime(item.ModifiedAt))
	fmt.Fprintf(cc.Out, "Created:  %s\n", formatTime(item.CreatedAt))

	if item.SHA1 != "" {
		fmt.Fprintf(cc.Out, "SHA1:     %s\n", item.SHA1)
	}

	if item.Parent != nil {
		fmt.Fprintf(cc.Out, "Parent:   %s (id %s)\n", item.Parent.Name, item.Parent.ID)
	}
}

func runPutVersion(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	fileID, err := parseIDArg("file ID", args[1])
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	etag, _ := cmd.Flags().GetInt64("etag")

	if !cmd.Flags().Changed("etag") {
		etag, err = currentETag(cmd, session, fileID)
		if err != nil {
			return err
		}
	}

	cc.Logger.Debug("uploading version", slog.String("file_id", fileID.String()), slog.Int64("etag", etag))

	res, err := session.UploadFileVersion(ctx, args[0], fileID, etag)
	if err != nil {
		return fmt.Errorf("uploading version of %s: %w", fileID, err)
	}

	return printResult(cc, res, func() error {
		return printUploaded(cc, res)
	})
}

// currentETag reads a file's etag for a conditional request.
func currentETag(cmd *cobra.Command, session *box.Session, fileID box.ID) (int64, error) {
	res, err := session.FileInfo(cmd.Context(), fileID)
	if err != nil {
		return 0, fmt.Errorf("reading etag of %s: %w", fileID, err)
	}

	rec, ok := res.Record()
	if !ok {
		return 0, fmt.Errorf("reading etag of %s: unexpected response", fileID)
	}

	return rec.ETag()
}

func runVersions(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	fileID, err := parseIDArg("file ID", args[0])
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	res, err := session.ViewFileVersions(cmd.Context(), fileID)
	if err != nil {
		return fmt.Errorf("listing versions of %s: %w", fileID, err)
	}

	return printResult(cc, res, func() error {
		rec, _ := res.Record()
		for _, v := range rec.Entries() {
			var item box.Item
			if err := v.Decode(&item); err != nil {
				return err
			}

			fmt.Fprintf(cc.Out, "%s  %s  %s\n", item.ID, formatTime(item.ModifiedAt), item.SHA1)
		}

		return nil
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	fileID, err := parseIDArg("file ID", args[0])
	if err != nil {
		return err
	}

	session, err := cc.authorizedSession()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("etag") {
		etag, _ := cmd.Flags().GetInt64("etag")
		_, err = session.DeleteFileIfMatch(ctx, fileID, etag)
	} else {
		_, err = session.DeleteFile(ctx, fileID)
	}

	if err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}

	cc.Logger.Debug("delete complete", slog.String("file_id", fileID.String()))

	if cc.Flags.JSON {
		return printJSON(cc.Out, map[string]string{"deleted": fileID.String()})
	}

	cc.Statusf("Deleted %s\n", fileID)

	return nil
}
