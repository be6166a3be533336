package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/transport"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

// Endpoints of the support backend
const (
	EndpointHealth        = "/api/health"
	EndpointBotStatus     = "/api/auto-response/status"
	EndpointBotToggle     = "/api/auto-response/toggle"
	EndpointConversations = "/api/conversations"
	EndpointSendMessage   = "/api/send-message"
	EndpointSendAIMessage = "/api/send-ai-message"
	EndpointStats         = "/api/stats"
	EndpointKnowledgeBase = "/api/knowledge-base"
	EndpointReports       = "/api/reports"
)

// SendResult is what the backend reports back for an accepted send. Fields are
// zero when the backend omits them.
type SendResult struct {
	ID        string
	Timestamp time.Time
	Content   string
}

// Client is the typed view of the remote conversation service
type Client struct {
	http *transport.Client
}

// NewClient wraps a transport client
func NewClient(tc *transport.Client) *Client {
	return &Client{http: tc}
}

// Health returns the backend status. Plain-text replies are taken verbatim.
func (c *Client) Health(ctx context.Context) (models.Health, error) {
	resp, err := c.http.Get(ctx, EndpointHealth)
	if err != nil {
		return models.Health{}, err
	}
	if !resp.IsJSON() {
		return models.Health{Status: strings.TrimSpace(resp.Text())}, nil
	}
	var health models.Health
	if err := resp.JSON(&health); err != nil {
		return models.Health{}, err
	}
	return health, nil
}

// AutomationStatus fetches the global auto-response flag
func (c *Client) AutomationStatus(ctx context.Context) (bool, error) {
	resp, err := c.http.Get(ctx, EndpointBotStatus)
	if err != nil {
		return false, err
	}
	var out statusResponse
	if err := resp.JSON(&out); err != nil {
		return false, err
	}
	if out.Enabled == nil {
		return false, &transport.InvalidResponseError{Endpoint: EndpointBotStatus, Field: "enabled"}
	}
	return *out.Enabled, nil
}

// ToggleAutomation switches the global auto-response flag
func (c *Client) ToggleAutomation(ctx context.Context, enabled bool) (bool, error) {
	return c.toggle(ctx, toggleRequest{Enabled: enabled})
}

// ToggleConversationAutomation switches the automated agent for one conversation
func (c *Client) ToggleConversationAutomation(ctx context.Context, conversationID string, enabled bool) (bool, error) {
	return c.toggle(ctx, toggleRequest{Enabled: enabled, ConversationID: conversationID})
}

func (c *Client) toggle(ctx context.Context, req toggleRequest) (bool, error) {
	resp, err := c.http.Post(ctx, EndpointBotToggle, req)
	if err != nil {
		return false, err
	}
	var out toggleResponse
	if err := resp.JSON(&out); err != nil {
		return false, err
	}
	if out.Success != nil {
		return *out.Success, nil
	}
	if out.Enabled != nil {
		return *out.Enabled == req.Enabled, nil
	}
	return true, nil
}

// ListConversations fetches the full, optionally filtered, conversation collection
func (c *Client) ListConversations(ctx context.Context, filter models.ConversationFilter) ([]models.Conversation, error) {
	endpoint := EndpointConversations
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return c.listConversations(ctx, endpoint)
}

// SearchConversations runs the backend's free-text conversation search
func (c *Client) SearchConversations(ctx context.Context, query string) ([]models.Conversation, error) {
	return c.listConversations(ctx, EndpointConversations+"/search/"+url.PathEscape(query))
}

func (c *Client) listConversations(ctx context.Context, endpoint string) ([]models.Conversation, error) {
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var out listConversationsResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(endpoint, out.Success, out.Error); err != nil {
		return nil, err
	}
	if out.Conversations == nil {
		return nil, &transport.InvalidResponseError{Endpoint: endpoint, Field: "conversations"}
	}
	return toConversations(*out.Conversations), nil
}

// GetConversation fetches one conversation with its full message history
func (c *Client) GetConversation(ctx context.Context, id string) (models.Conversation, []models.Message, error) {
	endpoint := EndpointConversations + "/" + url.PathEscape(id)
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return models.Conversation{}, nil, err
	}
	var out getConversationResponse
	if err := resp.JSON(&out); err != nil {
		return models.Conversation{}, nil, err
	}
	if err := checkEnvelope(endpoint, out.Success, out.Error); err != nil {
		return models.Conversation{}, nil, err
	}
	if out.Messages == nil {
		return models.Conversation{}, nil, &transport.InvalidResponseError{Endpoint: endpoint, Field: "messages"}
	}

	var conv models.Conversation
	if out.Conversation != nil {
		conv = toConversation(*out.Conversation)
	}
	if conv.ID == "" {
		conv.ID = id
	}
	return conv, toMessages(id, *out.Messages), nil
}

// GetMessages returns only the message history of a conversation
func (c *Client) GetMessages(ctx context.Context, id string) ([]models.Message, error) {
	_, msgs, err := c.GetConversation(ctx, id)
	return msgs, err
}

// SendMessage sends a human-authored message to the customer
func (c *Client) SendMessage(ctx context.Context, to, message string) (SendResult, error) {
	return c.send(ctx, EndpointSendMessage, sendMessageRequest{To: to, Message: message})
}

// SendAIMessage asks the backend to generate and send a reply from prompt and context
func (c *Client) SendAIMessage(ctx context.Context, to, prompt, contextText string) (SendResult, error) {
	return c.send(ctx, EndpointSendAIMessage, sendAIMessageRequest{To: to, Prompt: prompt, Context: contextText})
}

func (c *Client) send(ctx context.Context, endpoint string, body interface{}) (SendResult, error) {
	resp, err := c.http.Post(ctx, endpoint, body)
	if err != nil {
		return SendResult{}, err
	}
	var out sendMessageResponse
	if err := resp.JSON(&out); err != nil {
		return SendResult{}, err
	}
	if out.Success != nil && !*out.Success {
		return SendResult{}, &transport.RemoteError{Status: resp.StatusCode, Body: firstString(out.Error, "send rejected")}
	}

	result := SendResult{
		ID:        firstString(out.MessageID, out.SID),
		Timestamp: out.Timestamp.Time,
		Content:   firstString(out.AIMessage, out.Response),
	}
	if out.Message != nil {
		msg := toMessage("", *out.Message)
		result.ID = firstString(result.ID, msg.ID)
		if result.Timestamp.IsZero() {
			result.Timestamp = msg.Timestamp
		}
		result.Content = firstString(result.Content, msg.Content)
	}
	return result, nil
}

// MarkRead marks every customer message of a conversation as read
func (c *Client) MarkRead(ctx context.Context, id string) error {
	_, err := c.http.Post(ctx, EndpointConversations+"/"+url.PathEscape(id)+"/read", nil)
	return err
}

// Stats returns the backend's aggregate counters
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	resp, err := c.http.Get(ctx, EndpointStats)
	if err != nil {
		return nil, err
	}
	stats := models.Stats{}
	if err := resp.JSON(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListKnowledgeBase returns every knowledge base entry
func (c *Client) ListKnowledgeBase(ctx context.Context) ([]models.KnowledgeBaseEntry, error) {
	resp, err := c.http.Get(ctx, EndpointKnowledgeBase)
	if err != nil {
		return nil, err
	}
	var out knowledgeListResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(EndpointKnowledgeBase, out.Success, out.Error); err != nil {
		return nil, err
	}
	if out.Entries == nil {
		return nil, &transport.InvalidResponseError{Endpoint: EndpointKnowledgeBase, Field: "entries"}
	}
	entries := make([]models.KnowledgeBaseEntry, 0, len(*out.Entries))
	for _, w := range *out.Entries {
		entries = append(entries, toKnowledgeEntry(w))
	}
	return entries, nil
}

// CreateKnowledgeEntry stores a new entry and returns it with its assigned id
func (c *Client) CreateKnowledgeEntry(ctx context.Context, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	return c.writeKnowledgeEntry(ctx, http.MethodPost, EndpointKnowledgeBase, entry)
}

// UpdateKnowledgeEntry replaces the entry with the given id
func (c *Client) UpdateKnowledgeEntry(ctx context.Context, id string, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	return c.writeKnowledgeEntry(ctx, http.MethodPut, EndpointKnowledgeBase+"/"+url.PathEscape(id), entry)
}

func (c *Client) writeKnowledgeEntry(ctx context.Context, method, endpoint string, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	resp, err := c.http.Call(ctx, method, endpoint, knowledgeEntryRequest{
		KeyQuestion: entry.KeyQuestion,
		Answer:      entry.Answer,
		Active:      entry.Active,
		Tags:        entry.Tags,
	})
	if err != nil {
		return models.KnowledgeBaseEntry{}, err
	}
	var out knowledgeEntryResponse
	if err := resp.JSON(&out); err != nil {
		return models.KnowledgeBaseEntry{}, err
	}
	if err := checkEnvelope(endpoint, out.Success, out.Error); err != nil {
		return models.KnowledgeBaseEntry{}, err
	}
	if out.Entry == nil {
		return models.KnowledgeBaseEntry{}, &transport.InvalidResponseError{Endpoint: endpoint, Field: "entry"}
	}
	return toKnowledgeEntry(*out.Entry), nil
}

// DeleteKnowledgeEntry removes an entry. It reports false when the backend had no such entry.
func (c *Client) DeleteKnowledgeEntry(ctx context.Context, id string) (bool, error) {
	endpoint := EndpointKnowledgeBase + "/" + url.PathEscape(id)
	resp, err := c.http.Call(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		if transport.StatusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	var out envelope
	if len(resp.Body) == 0 {
		return true, nil
	}
	if err := resp.JSON(&out); err != nil {
		return false, err
	}
	return out.Success == nil || *out.Success, nil
}

// GetReport fetches the aggregate report for [start, end] (YYYY-MM-DD)
func (c *Client) GetReport(ctx context.Context, start, end string) (models.Report, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	endpoint := EndpointReports + "?" + q.Encode()

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return models.Report{}, err
	}
	var out struct {
		Success *bool          `json:"success"`
		Error   string         `json:"error"`
		Report  *models.Report `json:"report"`
	}
	if err := resp.JSON(&out); err != nil {
		return models.Report{}, err
	}
	if err := checkEnvelope(endpoint, out.Success, out.Error); err != nil {
		return models.Report{}, err
	}
	if out.Report == nil {
		return models.Report{}, &transport.InvalidResponseError{Endpoint: endpoint, Field: "report"}
	}
	report := *out.Report
	if report.StartDate == "" {
		report.StartDate = start
	}
	if report.EndDate == "" {
		report.EndDate = end
	}
	return report, nil
}

// checkEnvelope enforces the {success: ...} contract
func checkEnvelope(endpoint string, success *bool, message string) error {
	if success == nil {
		return &transport.InvalidResponseError{Endpoint: endpoint, Field: "success"}
	}
	if !*success {
		return &transport.RemoteError{Status: http.StatusOK, Body: firstString(message, fmt.Sprintf("%s reported failure", endpoint))}
	}
	return nil
}
