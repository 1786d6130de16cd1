package menu

import (
	apperrors "github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/validation"
)

// SubmitItem is one menu item supplied directly by the caller.
type SubmitItem struct {
	// Name is the item name as printed on the menu (Japanese).
	Name string `json:"name" validate:"required,max=256"`
	// Price is the raw price string, if known.
	Price string `json:"price,omitempty" validate:"max=64"`
}

// SubmitRequest starts a processing run. Callers provide either the item
// list directly or a base64-encoded menu image for OCR extraction.
type SubmitRequest struct {
	// SessionID optionally names the session; generated when empty.
	SessionID string `json:"session_id,omitempty" validate:"max=128"`
	// Items is the menu item list, when already known.
	Items []SubmitItem `json:"items,omitempty" validate:"omitempty,dive"`
	// ImageData is a base64-encoded menu photo for OCR extraction.
	ImageData string `json:"image_data,omitempty"`
}

// Validate checks the request, combining tag validation with the
// either-or rule tags cannot express.
func (r SubmitRequest) Validate() *apperrors.AppError {
	v := validation.New().
		Custom(len(r.Items) > 0 || r.ImageData != "", "items", "items or image_data is required")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if err := validation.Validate(r); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return appErr
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}
