package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tai-edu/tai/internal/domain"
)

// UploadFile sends one file as multipart/form-data with fields "file" and
// "course_id". The part's content type is sniffed from the file contents.
func (c *Client) UploadFile(ctx context.Context, courseID, filename string, r io.Reader) (*domain.UploadResult, error) {
	const op = "upload file"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("read file: %w", err)}
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", mimetype.Detect(data).String())
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if err := w.WriteField("course_id", courseID); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	var result domain.UploadResult
	if err := c.do(ctx, op, http.MethodPost, c.endpoint("api", "upload"), &body, w.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CourseFiles lists a course's uploaded material.
func (c *Client) CourseFiles(ctx context.Context, courseID string) ([]domain.CourseFile, error) {
	var files []domain.CourseFile
	if err := c.getJSON(ctx, "fetch course files", c.endpoint("api", "courses", courseID, "files"), &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteCourseFile removes a file and, server-side, all of its chunks.
func (c *Client) DeleteCourseFile(ctx context.Context, courseID, fileID string) error {
	return c.delete(ctx, "delete file", c.endpoint("api", "courses", courseID, "files", fileID))
}
