package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"go-blog-api/internal/apperror"
)

// Store 管理上传目录下的文件，文件名追加随机后缀防止覆盖
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.IO("could not create upload directory", err)
	}
	return &Store{Dir: dir}, nil
}

// Save 校验大小后落盘，返回生成的文件名
func (s *Store) Save(fh *multipart.FileHeader, maxBytes int64) (string, error) {
	if fh == nil {
		return "", apperror.Validation("please choose a file")
	}
	if fh.Size > maxBytes {
		return "", apperror.Validation(fmt.Sprintf("file size is too big, must be less than %dKB", maxBytes/1024))
	}

	name := uniqueName(fh.Filename)
	src, err := fh.Open()
	if err != nil {
		return "", apperror.IO("could not read uploaded file", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", apperror.IO("could not store uploaded file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		return "", apperror.IO("could not store uploaded file", err)
	}
	return name, nil
}

// Remove 删除上传目录内的文件，路径分量取 Base 防止越界
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, filepath.Base(name))); err != nil {
		return apperror.IO("could not delete file", err)
	}
	return nil
}

// uniqueName 保留原始扩展名，basename 后拼接随机后缀
func uniqueName(original string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = strings.ReplaceAll(stem, "..", "")
	if stem == "" || stem == "." {
		stem = "file"
	}
	return stem + uuid.NewString() + ext
}
