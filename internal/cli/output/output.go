package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fileshare/fileshare/internal/cli/api"
)

// JSON prints v as indented JSON.
func JSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// FileTable prints files as a table. Files owned by someone other than me are
// marked as shared with me.
func FileTable(w io.Writer, files []api.File, me string) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tTYPE\tACCESS\tUPLOADED")
	for _, f := range files {
		access := "owner"
		if f.OwnerID != me {
			access = "shared"
		} else if n := len(f.SharedWith); n > 0 {
			access = fmt.Sprintf("owner, %d share(s)", n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.OriginalName, FormatSize(f.Size), shortMIME(f.MimeType), access, RelativeTime(f.UploadedAt))
	}
	tw.Flush()
}

// FileDetail prints a single file's details.
func FileDetail(w io.Writer, f api.File) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", f.OriginalName)
	fmt.Fprintf(tw, "ID:\t%s\n", f.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", f.MimeType)
	fmt.Fprintf(tw, "Size:\t%s\n", FormatSize(f.Size))
	fmt.Fprintf(tw, "Owner:\t%s\n", f.OwnerID)
	if len(f.SharedWith) > 0 {
		fmt.Fprintf(tw, "Shared With:\t%s\n", strings.Join(f.SharedWith, ", "))
	}
	if f.LinkToken != nil && f.LinkExpiresAt != nil {
		state := "active"
		if !f.LinkExpiresAt.After(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(tw, "Link:\t%s until %s\n", state, f.LinkExpiresAt.Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "Uploaded:\t%s\n", f.UploadedAt.Format(time.RFC3339))
	tw.Flush()
}

func LinkDetail(w io.Writer, l api.Link) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Share URL:\t%s\n", l.ShareURL)
	fmt.Fprintf(tw, "Token:\t%s\n", l.LinkToken)
	fmt.Fprintf(tw, "Expires:\t%s\n", l.ExpiresAt.Format(time.RFC3339))
	tw.Flush()
}

func UserInfo(w io.Writer, u api.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	tw.Flush()
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// "application/pdf" -> "pdf"
func shortMIME(mime string) string {
	if _, sub, ok := strings.Cut(mime, "/"); ok {
		return sub
	}
	return mime
}
