package public

import (
	"strconv"

	"github.com/giftify-next/internal/http/response"
	"github.com/giftify-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCreators 创作者目录
func (h *Handler) ListCreators(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.CreatorService.List(uid, service.CreatorListInput{
		Search:       c.Query("search"),
		Category:     c.Query("category"),
		OnlyVerified: c.DefaultQuery("verified", "false") == "true",
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		respondCreatorDirectoryError(c, err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetCreator 创作者详情
func (h *Handler) GetCreator(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || creatorID == 0 {
		respondError(c, response.CodeBadRequest, "creator id invalid", nil)
		return
	}

	item, err := h.CreatorService.Get(uid, uint(creatorID))
	if err != nil {
		respondCreatorDirectoryError(c, err)
		return
	}
	response.Success(c, item)
}

// FavoriteCreator 收藏创作者
func (h *Handler) FavoriteCreator(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || creatorID == 0 {
		respondError(c, response.CodeBadRequest, "creator id invalid", nil)
		return
	}

	if err := h.CreatorService.Favorite(uid, uint(creatorID)); err != nil {
		respondCreatorDirectoryError(c, err)
		return
	}
	response.Success(c, gin.H{"favorited": true})
}

// UnfavoriteCreator 取消收藏创作者
func (h *Handler) UnfavoriteCreator(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || creatorID == 0 {
		respondError(c, response.CodeBadRequest, "creator id invalid", nil)
		return
	}

	if err := h.CreatorService.Unfavorite(uid, uint(creatorID)); err != nil {
		respondCreatorDirectoryError(c, err)
		return
	}
	response.Success(c, gin.H{"favorited": false})
}

// ListFavoriteCreators 我收藏的创作者
func (h *Handler) ListFavoriteCreators(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CreatorService.ListFavorites(uid)
	if err != nil {
		respondCreatorDirectoryError(c, err)
		return
	}
	response.Success(c, items)
}
