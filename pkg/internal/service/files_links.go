package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/token"
	"github.com/yeisme/uplink/pkg/internal/types"
	nlog "github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/metrics"
	"github.com/yeisme/uplink/pkg/queue"
)

// GetLinks 批量签发上传链接，返回 fileHash 到上传 URL 的映射.
// 每次调用都为每个文件新建一条 created 记录并生成新令牌，
// 同一 hash 重复调用会产生多条记录，至少一行一调用的语义是有意为之.
func (fs *FileService) GetLinks(ctx context.Context, apiKey string,
	req *types.GetLinksRequest,
) (*types.GetLinksResponse, error) {
	project, err := fs.resolveProject(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	links := make(map[string]string, len(req.Files))

	for i := range req.Files {
		f, err := fs.issueLink(ctx, project.ID, &req.EntityLinkage, &req.Files[i])
		if err != nil {
			return nil, err
		}

		tok, err := token.Encode(f)
		if err != nil {
			return nil, err
		}

		links[f.FileHash] = fs.buildUploadURL(tok)
	}

	metrics.LinksIssued.Add(float64(len(req.Files)))

	return &types.GetLinksResponse{Links: links}, nil
}

// GetUploadLink 签发单个上传链接，额外暴露记录 uid.
func (fs *FileService) GetUploadLink(ctx context.Context, apiKey string,
	req *types.GetUploadLinkRequest,
) (*types.GetUploadLinkResponse, error) {
	project, err := fs.resolveProject(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	f, err := fs.issueLink(ctx, project.ID, &req.EntityLinkage, &req.File)
	if err != nil {
		return nil, err
	}

	tok, err := token.Encode(f)
	if err != nil {
		return nil, err
	}

	metrics.LinksIssued.Inc()

	return &types.GetUploadLinkResponse{
		UID:  f.UID,
		Link: fs.buildUploadURL(tok),
	}, nil
}

// issueLink 创建一条 created 记录并落库，成功后广播签发事件.
func (fs *FileService) issueLink(ctx context.Context, projectID uint,
	linkage *types.EntityLinkage, spec *types.FileSpec,
) (*model.File, error) {
	f, err := model.NewFile(projectID,
		linkage.EntityName, linkage.UserUID, linkage.Action, linkage.EntityUID,
		spec.FileHash, model.FileMeta{
			FileName:     spec.FileName,
			FileSize:     spec.FileSize,
			FileExt:      spec.FileExt,
			LastModified: spec.LastModified,
		})
	if err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}

	if err := fs.files.Create(ctx, f); err != nil {
		return nil, err
	}

	fs.publishLinkIssued(ctx, f)

	return f, nil
}

// buildUploadURL 用配置注入的基础地址拼接上传链接，token 作为查询参数.
func (fs *FileService) buildUploadURL(tok string) string {
	base := strings.TrimSuffix(fs.link.BaseURL, "/")
	path := fs.link.UploadPath

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return fmt.Sprintf("%s%s?token=%s", base, path, url.QueryEscape(tok))
}

// publishLinkIssued 事件发布失败只记日志，不影响签发结果.
func (fs *FileService) publishLinkIssued(ctx context.Context, f *model.File) {
	if fs.pub == nil {
		return
	}

	err := queue.PublishFileLinkIssued(ctx, fs.pub, queue.FileLinkIssuedPayload{
		File:     fileRef(f),
		FileName: f.Meta.FileName,
		FileSize: f.Meta.FileSize,
	}, queue.WithProducer("uplink"))
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("uid", f.UID).Msg("publish link issued event failed")
	}
}
