package translator

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	e "github.com/fansqz/go-debug-translator/error"
)

// handleKind 返回给客户端的引用类型
// 引用由适配器的数字引用生成，只在下一次 resume 之前有效
type handleKind string

const (
	frameHandle     handleKind = "f"
	variablesHandle handleKind = "v"
)

// encodeHandle 生成引用：base64(<类型>-<适配器引用>)
func encodeHandle(kind handleKind, reference int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s-%d", kind, reference)))
}

// decodeHandle 解析引用，类型不匹配时返回错误
func decodeHandle(handle string, kind handleKind) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(handle)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", e.ErrInvalidHandle, handle)
	}
	t := strings.SplitN(string(decoded), "-", 2)
	if len(t) != 2 || handleKind(t[0]) != kind {
		return 0, fmt.Errorf("%w: %q", e.ErrInvalidHandle, handle)
	}
	reference, err := strconv.Atoi(t[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", e.ErrInvalidHandle, handle)
	}
	return reference, nil
}
