package handler

import (
	"time"

	"github.com/pkarip/imagewall/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// ImageDTO is the JSON representation of an image record.
type ImageDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	Order     int    `json:"order"`
	CreatedAt string `json:"createdAt"`
}

func toImageDTO(img *domain.ImageRecord) ImageDTO {
	return ImageDTO{
		ID:        img.ID,
		Title:     img.Title,
		ImageURL:  img.AssetURL,
		Order:     img.SortOrder,
		CreatedAt: img.CreatedAt.Format(time.RFC3339),
	}
}

func toImageDTOs(images []domain.ImageRecord) []ImageDTO {
	dtos := make([]ImageDTO, len(images))
	for i := range images {
		dtos[i] = toImageDTO(&images[i])
	}
	return dtos
}
