package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCRMPushHandover = "crm.push_handover"

const TaskCRMLeadSync = "crm.lead_sync"

const TaskNotificationRetry = "handover.notification.retry"

type CRMPushHandoverPayload struct {
	BriefID string `json:"briefId"`
}

type CRMLeadSyncPayload struct {
	LeadID string `json:"leadId"`
}

type NotificationRetryPayload struct {
	BriefID string `json:"briefId"`
}

func NewCRMPushHandoverTask(payload CRMPushHandoverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMPushHandover, data), nil
}

func ParseCRMPushHandoverPayload(task *asynq.Task) (CRMPushHandoverPayload, error) {
	var payload CRMPushHandoverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMPushHandoverPayload{}, err
	}
	return payload, nil
}

func NewCRMLeadSyncTask(payload CRMLeadSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMLeadSync, data), nil
}

func ParseCRMLeadSyncPayload(task *asynq.Task) (CRMLeadSyncPayload, error) {
	var payload CRMLeadSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMLeadSyncPayload{}, err
	}
	return payload, nil
}

func NewNotificationRetryTask(payload NotificationRetryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationRetry, data), nil
}

func ParseNotificationRetryPayload(task *asynq.Task) (NotificationRetryPayload, error) {
	var payload NotificationRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationRetryPayload{}, err
	}
	return payload, nil
}
