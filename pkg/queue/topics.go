// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：ul.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：file(文件生命周期)、project(租户)
// 动作：link(链接签发)、uploaded(字节落盘)、submitted(提交审核)、accessed(被下载)

const (
	// 文件生命周期领域.
	TopicFileLinkIssued = "ul.file.link.issued" // 上传链接已签发，记录处于 created 状态
	TopicFileUploaded   = "ul.file.uploaded"    // 字节已接收并落盘，记录进入 preload 状态
	TopicFileSubmitted  = "ul.file.submitted"   // 调用方已提交，记录进入 ready_for_check 状态，下游审核流程的触发点
	TopicFileAccessed   = "ul.file.accessed"    // 文件被下载（用于热点统计与审计）

	// 运维领域.
	TopicFileStaleLoading = "ul.file.stale.loading" // 巡检发现长时间停留在 loading 状态的记录
)

// 主题分组，用于批量操作或权限控制.
var (
	// 文件生命周期相关主题集合.
	FileTopics = []string{
		TopicFileLinkIssued, TopicFileUploaded,
		TopicFileSubmitted, TopicFileAccessed,
	}

	// 运维相关主题集合.
	OpsTopics = []string{
		TopicFileStaleLoading,
	}
)
