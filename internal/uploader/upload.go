package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/fileutils"
	"github.com/osallek/osa-extractor/internal/snapshot"
	"github.com/ubuntu/decorate"
)

// Submission is the answer of the server to a submitted snapshot.
type Submission struct {
	ID         string `json:"id"`
	ResultLink string `json:"resultLink"`
	// MissingAssets lists, per category, the assets the server does not know yet.
	MissingAssets map[string][]string `json:"missingAssets,omitempty"`
}

// RemoteSave is a submission known by the server.
type RemoteSave struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
	Link         string    `json:"link,omitempty"`
}

// maxResponseSize bounds the answers read from the server.
const maxResponseSize = 8 << 20

type errorObject struct {
	ErrorCode string `json:"errorCode"`
}

type assetsMetadata struct {
	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId"`
}

// SubmitSnapshot sends snap to the server and returns what the server needs next.
func (c *Client) SubmitSnapshot(ctx context.Context, snap *snapshot.Snapshot) (sub Submission, err error) {
	defer decorate.OnError(&err, "snapshot submission failed")

	data, err := json.Marshal(snap)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	u, err := c.getURL("api", "save")
	if err != nil {
		return Submission{}, err
	}
	c.log.Debug("Submitting snapshot", "url", u, "id", snap.ID, "size", len(data))

	if err := c.send(ctx, http.MethodPost, u, "application/json", bytes.NewReader(data), &sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// UploadAssets bundles the files at paths, all under root, and sends them for session sessionID.
// The bundle is written in root and holds exactly the given files, named relative to root.
func (c *Client) UploadAssets(ctx context.Context, root string, paths []string, sessionID string) (err error) {
	defer decorate.OnError(&err, "asset upload failed")

	zipPath := filepath.Join(root, constants.AssetsArchiveName)
	names, err := c.bundle(root, zipPath, paths)
	if err != nil {
		return err
	}
	c.log.Debug("Uploading assets", "session", sessionID, "files", len(names))

	archive, err := c.fs.Open(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open asset bundle: %v", err)
	}
	defer archive.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("assets", constants.AssetsArchiveName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, archive); err != nil {
		return fmt.Errorf("failed to read asset bundle: %v", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="data"`)
	h.Set("Content-Type", "application/json")
	if part, err = w.CreatePart(h); err != nil {
		return err
	}
	if err := json.NewEncoder(part).Encode(assetsMetadata{ClientID: c.clientID, SessionID: sessionID}); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	u, err := c.getURL("api", "data")
	if err != nil {
		return err
	}
	if err := c.send(ctx, http.MethodPost, u, w.FormDataContentType(), &buf, nil); err != nil {
		var se *ServerError
		if errors.As(err, &se) {
			return errors.Join(ErrAssetUploadRejected, err)
		}
		return err
	}
	return nil
}

// ListSaves returns the submissions of this client known by the server, newest first.
func (c *Client) ListSaves(ctx context.Context) (saves []RemoteSave, err error) {
	defer decorate.OnError(&err, "could not list remote saves")

	u, err := c.getURL("api", "save", "user", c.clientID)
	if err != nil {
		return nil, err
	}
	if err := c.send(ctx, http.MethodGet, u, "", nil, &saves); err != nil {
		return nil, err
	}
	slices.SortStableFunc(saves, func(a, b RemoteSave) int { return b.CreationDate.Compare(a.CreationDate) })
	return saves, nil
}

func (c *Client) getURL(elem ...string) (string, error) {
	u, err := url.Parse(c.baseServerURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base server URL %s: %v", c.baseServerURL, err)
	}
	u.Path = path.Join(append([]string{u.Path}, elem...)...)
	return u.String(), nil
}

// send performs one request and decodes the body of a successful response into out, unless out is nil.
// A non 2xx answer is returned as a *ServerError.
func (c *Client) send(ctx context.Context, method, u, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("failed to send HTTP request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorObject
		if err := fileutils.ReadJSON(resp.Body, &e, maxResponseSize); err != nil {
			c.log.Debug("Unstructured error from server", "status", resp.StatusCode, "error", err)
		}
		return &ServerError{Status: resp.StatusCode, Code: e.ErrorCode}
	}

	if out == nil {
		return nil
	}
	if err := fileutils.ReadJSON(resp.Body, out, maxResponseSize); err != nil {
		return errors.Join(ErrTransport, fmt.Errorf("invalid response from %s: %w", u, err))
	}
	return nil
}
