package models

func ToTagResponse(tag Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name}
}

func ToTagResponses(tags []Tag) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, tag := range tags {
		out[i] = ToTagResponse(tag)
	}
	return out
}

func ToTaskResponse(task Task) TaskResponse {
	return TaskResponse{
		ID:            task.ID,
		Name:          task.Name,
		Description:   task.Description,
		ScheduledDate: DateTime(task.ScheduledDate),
		Priority:      task.Priority,
		Tags:          ToTagResponses(task.Tags),
	}
}

func ToTaskResponses(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskResponse(task)
	}
	return out
}

// NewTask builds an unsaved task from a validated create request.
func NewTask(req TaskCreateRequest) Task {
	task := Task{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.ScheduledDate != nil {
		task.ScheduledDate = req.ScheduledDate.Time().UTC()
	}
	return task
}

// ApplyUpdate copies every non-nil field of req onto task.
func ApplyUpdate(task *Task, req TaskUpdateRequest) {
	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.ScheduledDate != nil {
		task.ScheduledDate = req.ScheduledDate.Time().UTC()
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
}
