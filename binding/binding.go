// Package binding 负责把模板标签里的 ${path.to.value} 占位符替换成
// 外部数据。路径支持点号取键与 [n] 下标取数组；数据里找不到时回退
// 到内置的日期占位符，再找不到则原样保留，方便留白手写。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// 可替换时钟，测试用。
var now = time.Now

var weekdayNames = []string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// builtin 返回内置占位符的取值；模板靠它生成当日的页眉字段。
func builtin(path string) (string, bool) {
	t := now()
	switch path {
	case "date":
		return t.Format("2006-01-02"), true
	case "year":
		return strconv.Itoa(t.Year()), true
	case "month":
		return strconv.Itoa(int(t.Month())), true
	case "day":
		return strconv.Itoa(t.Day()), true
	case "weekday":
		return weekdayNames[int(t.Weekday())], true
	default:
		return "", false
	}
}

// Interpolate 替换 text 中的全部占位符。data 优先于内置占位符，
// 两边都没有的路径原样保留。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if data != nil {
			if val, ok := resolvePath(data, path); ok {
				return fmt.Sprint(val)
			}
		}
		if val, ok := builtin(path); ok {
			return val
		}
		return match
	})
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
