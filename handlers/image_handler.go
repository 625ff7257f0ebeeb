package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"Restaurant/services"

	"github.com/gin-gonic/gin"
)

func isValidImageExtensions(file *multipart.FileHeader) bool {
	allowExtensions := []string{".jpg", ".jpeg", ".png", ".webp"}
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

func makeUniqueFileName(file *multipart.FileHeader) string {
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	fileBase := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	return fmt.Sprintf("%s_%d%s", fileBase, time.Now().UnixNano(), fileExt)
}

// 上傳菜品圖片，回傳可直接填入imageUrl的完整網址
func UploadImageHandler(c *gin.Context, uploadsDir string) {
	file, err := c.FormFile("image")
	if err != nil {
		respondBindError(c, err)
		return
	}

	if !isValidImageExtensions(file) {
		respondError(c, services.Validation("圖片檔案格式錯誤"))
		return
	}

	//檢查uploads資料夾是否存在，如不存在則創建
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		respondError(c, services.Store("建立uploads資料夾失敗", err))
		return
	}

	imageName := makeUniqueFileName(file)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadsDir, imageName)); err != nil {
		respondError(c, services.Store("儲存圖片失敗", err))
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "成功上傳圖片",
		"data": gin.H{
			"imageUrl": fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Request.Host, imageName),
		},
	})
}
