// Package router 管理路由配置，将路径与 pkg/internal/handle 中的处理器绑定到 gin 引擎.
package router
