package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hinabot/hinabot/internal/boterr"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	listPageSize   = 50
	maxFolders     = 5
	maxFiles       = 8
)

// TokenSource yields a bearer token for one call on behalf of a user.
type TokenSource interface {
	Bearer(ctx context.Context, userID string) (string, error)
}

type File struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mimeType"`
	Size           string `json:"size"`
	CreatedTime    string `json:"createdTime"`
	ModifiedTime   string `json:"modifiedTime"`
	WebViewLink    string `json:"webViewLink"`
	WebContentLink string `json:"webContentLink"`
}

func (f File) IsFolder() bool { return f.MimeType == folderMimeType }

// SizeBytes parses the API's string-typed size field; zero when absent.
func (f File) SizeBytes() int64 {
	parsed, err := strconv.ParseInt(f.Size, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

type Listing struct {
	Folders []File
	Files   []File
}

type Account struct {
	User struct {
		DisplayName  string `json:"displayName"`
		EmailAddress string `json:"emailAddress"`
	} `json:"user"`
	StorageQuota struct {
		Limit string `json:"limit"`
		Usage string `json:"usage"`
	} `json:"storageQuota"`
}

// Client is a thin typed wrapper over the Drive v3 REST API. All calls act
// on behalf of a single user via the token source.
type Client struct {
	apiBase    string
	uploadBase string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(apiBase, uploadBase string, tokens TokenSource, logger *slog.Logger) *Client {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://www.googleapis.com/drive/v3"
	}
	if strings.TrimSpace(uploadBase) == "" {
		uploadBase = "https://www.googleapis.com/upload/drive/v3"
	}
	return &Client{
		apiBase:    strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		uploadBase: strings.TrimRight(strings.TrimSpace(uploadBase), "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		logger:     logger,
	}
}

func (c *Client) CreateFolder(ctx context.Context, userID, name, parentID string) (string, error) {
	metadata := map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
	}
	if parentID != "" {
		metadata["parents"] = []string{parentID}
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	var created File
	err = c.do(ctx, userID, http.MethodPost, c.apiBase+"/files?fields=id,name", "application/json", bytes.NewReader(payload), &created)
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return created.ID, nil
}

// ListChildren lists the direct children of folderID, or of the Drive root
// when folderID is empty. Folders and files come back separated and capped
// to what a single embed can show.
func (c *Client) ListChildren(ctx context.Context, userID, folderID string) (Listing, error) {
	parent := "root"
	if strings.TrimSpace(folderID) != "" {
		parent = folderID
	}
	query := url.Values{}
	query.Set("q", fmt.Sprintf("trashed = false and '%s' in parents", escapeQueryTerm(parent)))
	query.Set("fields", "files(id,name,mimeType,size,createdTime,modifiedTime,webViewLink)")
	query.Set("orderBy", "folder,name")
	query.Set("pageSize", strconv.Itoa(listPageSize))

	var response struct {
		Files []File `json:"files"`
	}
	if err := c.do(ctx, userID, http.MethodGet, c.apiBase+"/files?"+query.Encode(), "", nil, &response); err != nil {
		return Listing{}, fmt.Errorf("list children of %q: %w", parent, err)
	}

	listing := Listing{}
	for _, file := range response.Files {
		if file.IsFolder() {
			if len(listing.Folders) < maxFolders {
				listing.Folders = append(listing.Folders, file)
			}
			continue
		}
		if len(listing.Files) < maxFiles {
			listing.Files = append(listing.Files, file)
		}
	}
	return listing, nil
}

// SearchByName returns non-trashed files whose name contains the term.
func (c *Client) SearchByName(ctx context.Context, userID, name string) ([]File, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("name contains '%s' and trashed = false", escapeQueryTerm(name)))
	query.Set("fields", "files(id,name,mimeType,size,modifiedTime,webViewLink)")
	query.Set("pageSize", "100")

	var response struct {
		Files []File `json:"files"`
	}
	if err := c.do(ctx, userID, http.MethodGet, c.apiBase+"/files?"+query.Encode(), "", nil, &response); err != nil {
		return nil, fmt.Errorf("search files for %q: %w", name, err)
	}
	return response.Files, nil
}

// Upload creates a file under parentID using a multipart/related request
// carrying metadata and content in one round trip.
func (c *Client) Upload(ctx context.Context, userID, parentID, name, mimeType string, content []byte) (File, error) {
	metadata := map[string]any{"name": name}
	if parentID != "" {
		metadata["parents"] = []string{parentID}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return File{}, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return File{}, err
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return File{}, err
	}

	mediaHeader := textproto.MIMEHeader{}
	if mimeType != "" {
		mediaHeader.Set("Content-Type", mimeType)
	}
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return File{}, err
	}
	if _, err := mediaPart.Write(content); err != nil {
		return File{}, err
	}
	if err := writer.Close(); err != nil {
		return File{}, err
	}

	endpoint := c.uploadBase + "/files?uploadType=multipart&fields=id,name,size,mimeType,createdTime,webViewLink"
	contentType := multipartRelated(writer.Boundary())

	var uploaded File
	if err := c.do(ctx, userID, http.MethodPost, endpoint, contentType, body, &uploaded); err != nil {
		return File{}, fmt.Errorf("upload %q: %w", name, err)
	}
	c.logger.Info("file uploaded", "user_id", userID, "file_id", uploaded.ID)
	return uploaded, nil
}

func (c *Client) Delete(ctx context.Context, userID, fileID string) error {
	if err := c.do(ctx, userID, http.MethodDelete, c.apiBase+"/files/"+url.PathEscape(fileID), "", nil, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	c.logger.Info("file deleted", "user_id", userID, "file_id", fileID)
	return nil
}

// CreatePublicPermission grants anyone-with-the-link read access.
func (c *Client) CreatePublicPermission(ctx context.Context, userID, fileID string) error {
	payload, err := json.Marshal(map[string]string{"role": "reader", "type": "anyone"})
	if err != nil {
		return err
	}
	endpoint := c.apiBase + "/files/" + url.PathEscape(fileID) + "/permissions"
	if err := c.do(ctx, userID, http.MethodPost, endpoint, "application/json", bytes.NewReader(payload), nil); err != nil {
		return fmt.Errorf("share file %s: %w", fileID, err)
	}
	return nil
}

func (c *Client) GetMetadata(ctx context.Context, userID, fileID string) (File, error) {
	endpoint := c.apiBase + "/files/" + url.PathEscape(fileID) + "?fields=id,name,mimeType,size,createdTime,modifiedTime,webViewLink,webContentLink"
	var file File
	if err := c.do(ctx, userID, http.MethodGet, endpoint, "", nil, &file); err != nil {
		return File{}, fmt.Errorf("get metadata for %s: %w", fileID, err)
	}
	return file, nil
}

func (c *Client) About(ctx context.Context, userID string) (Account, error) {
	var account Account
	if err := c.do(ctx, userID, http.MethodGet, c.apiBase+"/about?fields=user,storageQuota", "", nil, &account); err != nil {
		return Account{}, fmt.Errorf("get account info: %w", err)
	}
	return account, nil
}

func (c *Client) do(ctx context.Context, userID, method, endpoint, contentType string, body io.Reader, out any) error {
	bearer, err := c.tokens.Bearer(ctx, userID)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return statusError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode drive response: %w", err)
	}
	return nil
}

func statusError(res *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	switch res.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: drive returned 401", boterr.ErrNotAuthenticated)
	case http.StatusNotFound:
		return fmt.Errorf("%w: drive returned 404", boterr.ErrResourceNotFound)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: drive returned %d", boterr.ErrRemoteQuota, res.StatusCode)
	default:
		return fmt.Errorf("drive request failed: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}
}

// escapeQueryTerm escapes the quote characters Drive's query language
// treats specially.
func escapeQueryTerm(term string) string {
	return strings.ReplaceAll(strings.ReplaceAll(term, `\`, `\\`), "'", `\'`)
}

func multipartRelated(boundary string) string {
	return fmt.Sprintf("multipart/related; boundary=%s", boundary)
}
