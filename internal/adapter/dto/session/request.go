package session

// UpdateActionItemRequest edits an action item; omitted fields stay as they are
type UpdateActionItemRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=1,max=1000"`
	Completed *bool   `json:"completed,omitempty"`
}

// ReorderActionItemsRequest lists every action item id of a session in the new order
type ReorderActionItemsRequest struct {
	OrderedIDs []string `json:"ordered_ids" validate:"required,dive,uuid"`
}
