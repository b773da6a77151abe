package renderer

import "github.com/notewell/cornell/layout"

// Renderer 把求解好的页面几何输出为最终文件（如 PDF）。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// DocumentMeta 写入输出文件的元信息。
type DocumentMeta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}
