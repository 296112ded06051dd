package models

import (
	"github.com/google/uuid"
	"github.com/sherpas/supply/pkg/types"
)

func ReadResult2Model(result *types.ReadResult, contract string, function string) SupplyReading {
	return SupplyReading{
		ReadingID: result.ID.String(),
		Chain:     result.Chain,
		ChainID:   result.ChainID,
		Contract:  contract,
		Function:  function,
		Status:    result.Status.String(),
		Value:     result.Value,
		Values:    result.Values,
		Reason:    result.Reason,
		ReadAt:    result.ReadAt,
	}
}

func (m *SupplyReading) ToReadResult() types.ReadResult {
	status, err := types.ParseReadStatus(m.Status)
	if err != nil {
		status = types.ReadStatusError
	}
	id, err := uuid.Parse(m.ReadingID)
	if err != nil {
		id = uuid.Nil
	}
	return types.ReadResult{
		ID:      id,
		Chain:   m.Chain,
		ChainID: m.ChainID,
		Status:  status,
		Value:   m.Value,
		Values:  m.Values,
		Reason:  m.Reason,
		ReadAt:  m.ReadAt.UTC(),
	}
}
