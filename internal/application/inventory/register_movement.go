package inventory

import (
	"context"

	"github.com/jhoicas/estoques-api/internal/application/dto"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
// userID es el actor ya autenticado.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.StockMovementResponse, error) {
	input := MovementInputDTO{
		UserID:             userID,
		ProductID:          in.ProductID,
		OriginStockID:      in.OriginStockID,
		DestinationStockID: in.DestinationStockID,
		Type:               in.Type,
		Quantity:           in.Quantity,
		Observation:        in.Observation,
	}
	mov, err := uc.RegisterMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ToMovementResponse mapea el asiento a su DTO.
func ToMovementResponse(m *entity.StockMovement) *dto.StockMovementResponse {
	if m == nil {
		return nil
	}
	return &dto.StockMovementResponse{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		OriginStockID:      m.OriginStockID,
		DestinationStockID: m.DestinationStockID,
		Quantity:           m.Quantity,
		Type:               m.Type,
		Observation:        m.Observation,
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
	}
}
