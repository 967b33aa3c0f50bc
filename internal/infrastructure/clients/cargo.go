package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/location-manager/zone-service/internal/domain"
)

// Cargo gateway paths
const (
	pickingPointPath     = "/api/cargo-api-gateway/picking-point"
	pickingPointListPath = "/api/cargo-api-gateway/picking-point/list"
	orderValidatePath    = "/api/cargo-api-gateway/v3/order-validate"
	userTokenHeader      = "user-token"
)

// CargoBaseURLs maps CARGO_ENV to the gateway host
var CargoBaseURLs = map[string]string{
	"dev":  "https://microservices.dev.rappi.com",
	"prod": "https://microservices.dev.rappi.com",
}

// Fixed quote parameters sent with every feasibility check
const (
	validationTotalValue    = 52000
	validationUserTip       = 3000
	validationVehicleType   = "BIKE"
	validationPaymentMethod = "ONLINE"
)

// CargoConfig configures the cargo gateway client
type CargoConfig struct {
	Env       string
	BaseURL   string // overrides Env when set
	UserToken string
}

func (c CargoConfig) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if u, ok := CargoBaseURLs[strings.ToLower(c.Env)]; ok {
		return u
	}
	return CargoBaseURLs["dev"]
}

// CargoClient talks to the cargo logistics gateway: delivery feasibility
// checks and pickup point registrations.
type CargoClient struct {
	baseURL   string
	userToken string
	caller    *caller
}

func NewCargoClient(config CargoConfig, opts Options) *CargoClient {
	return &CargoClient{
		baseURL:   config.baseURL(),
		userToken: config.UserToken,
		caller:    newCaller("cargo", opts),
	}
}

type actionPoint struct {
	ExternalPickingPointID *string       `json:"external_picking_point_id,omitempty"`
	Products               []interface{} `json:"products"`
	ActionType             string        `json:"action_type"`
	LocationType           string        `json:"location_type"`
}

type clientInfo struct {
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Complement string  `json:"complement"`
	City       string  `json:"city"`
	Comments   string  `json:"comments"`
}

type validationPayload struct {
	TotalValue    float64       `json:"total_value"`
	UserTip       float64       `json:"user_tip"`
	VehicleType   string        `json:"vehicle_type"`
	PaymentMethod string        `json:"payment_method"`
	ActionPoints  []actionPoint `json:"action_points"`
	ClientInfo    clientInfo    `json:"client_info"`
}

func newValidationPayload(req domain.ValidationRequest) validationPayload {
	var pickingPoint *string
	if req.ExternalPickingPointID != "" {
		id := req.ExternalPickingPointID
		pickingPoint = &id
	}
	return validationPayload{
		TotalValue:    validationTotalValue,
		UserTip:       validationUserTip,
		VehicleType:   validationVehicleType,
		PaymentMethod: validationPaymentMethod,
		ActionPoints: []actionPoint{
			{ExternalPickingPointID: pickingPoint, Products: []interface{}{}, ActionType: "PICK_UP", LocationType: "STORE"},
			{Products: []interface{}{}, ActionType: "DROP_OFF", LocationType: "CLIENT"},
		},
		ClientInfo: clientInfo{
			FirstName: "cliente",
			LastName:  "cliente",
			Address:   req.Address,
			Lat:       req.Latitude,
			Lng:       req.Longitude,
			City:      req.City,
		},
	}
}

// Validate asks the gateway whether it can deliver to the request's address.
// A 400 reply with a JSON body is returned as a LogisticsValidation carrying only Error.
func (c *CargoClient) Validate(ctx context.Context, req domain.ValidationRequest) (*domain.LogisticsValidation, error) {
	resp, err := c.caller.do(ctx, "validate", http.MethodPost, c.baseURL+orderValidatePath, c.header(), newValidationPayload(req), false)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusBadRequest {
		var rejection domain.LogisticsError
		if err := json.Unmarshal(resp.body, &rejection); err == nil {
			rejection.Status = resp.status
			return &domain.LogisticsValidation{Error: &rejection}, nil
		}
	}

	var validation domain.LogisticsValidation
	if err := resp.decode(&validation); err != nil {
		return nil, err
	}
	return &validation, nil
}

type pickingPointReply struct {
	ID             json.Number `json:"id"`
	PickingPointID json.Number `json:"picking_point_id"`
}

// Create registers a pickup point and returns the gateway's id for it
func (c *CargoClient) Create(ctx context.Context, reg domain.ProviderPickupPoint) (int64, error) {
	resp, err := c.caller.do(ctx, "create_picking_point", http.MethodPost, c.baseURL+pickingPointPath, c.header(), reg, false)
	if err != nil {
		return 0, err
	}

	var reply pickingPointReply
	if err := resp.decode(&reply); err != nil {
		return 0, fmt.Errorf("failed to create picking point: %w", err)
	}
	for _, raw := range []json.Number{reply.ID, reply.PickingPointID} {
		if raw == "" {
			continue
		}
		id, err := raw.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid picking point id %q: %w", raw, err)
		}
		return id, nil
	}
	return 0, errors.New("picking point reply carries no id")
}

// Update replaces the registration identified by providerID
func (c *CargoClient) Update(ctx context.Context, providerID int64, reg domain.ProviderPickupPoint) error {
	payload := struct {
		ID int64 `json:"id"`
		domain.ProviderPickupPoint
	}{ID: providerID, ProviderPickupPoint: reg}

	resp, err := c.caller.do(ctx, "update_picking_point", http.MethodPut, c.baseURL+pickingPointPath, c.header(), payload, true)
	if err != nil {
		return err
	}
	if err := resp.decode(nil); err != nil {
		return fmt.Errorf("failed to update picking point %d: %w", providerID, err)
	}
	return nil
}

// Delete removes the registration identified by providerID
func (c *CargoClient) Delete(ctx context.Context, providerID int64) error {
	payload := map[string]int64{"id": providerID}

	resp, err := c.caller.do(ctx, "delete_picking_point", http.MethodDelete, c.baseURL+pickingPointPath, c.header(), payload, true)
	if err != nil {
		return err
	}
	if err := resp.decode(nil); err != nil {
		return fmt.Errorf("failed to delete picking point %d: %w", providerID, err)
	}
	return nil
}

// List returns the gateway's registrations as raw objects. A non-array reply is an empty list.
func (c *CargoClient) List(ctx context.Context) ([]map[string]interface{}, error) {
	resp, err := c.caller.do(ctx, "list_picking_points", http.MethodGet, c.baseURL+pickingPointListPath, c.header(), nil, true)
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := resp.decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to list picking points: %w", err)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return []map[string]interface{}{}, nil
	}
	points := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			points = append(points, m)
		}
	}
	return points, nil
}

func (c *CargoClient) header() http.Header {
	h := http.Header{}
	h.Set(userTokenHeader, c.userToken)
	return h
}
