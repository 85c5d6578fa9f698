package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// Fetcher reads server-owned collections. Implemented by *Client.
type Fetcher interface {
	FetchCart(ctx context.Context) (Cart, error)
	FetchAddresses(ctx context.Context) ([]Address, error)
	FetchOrders(ctx context.Context, page, limit int) (OrdersPage, error)
	FetchOrder(ctx context.Context, id string) (Order, error)
}

// CartMutator changes cart lines. The bool result reports whether the server
// returned the updated line.
type CartMutator interface {
	UpdateCartItem(ctx context.Context, itemID string, update CartItemUpdate) (CartItem, bool, error)
	RemoveCartItem(ctx context.Context, itemID string) error
}

// AddressMutator changes saved addresses.
type AddressMutator interface {
	SetDefaultAddress(ctx context.Context, addressID string) (Address, bool, error)
	DeleteAddress(ctx context.Context, addressID string) error
}

// OrderMutator places and changes orders.
type OrderMutator interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)
	CancelOrderItem(ctx context.Context, orderID, itemID string) (OrderItem, bool, error)
	ReturnOrderItem(ctx context.Context, orderID, itemID string, req ReturnRequest) (OrderItem, bool, error)
	VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResponse, error)
}

// Ensure Client implements the interfaces at compile time.
var (
	_ Fetcher        = (*Client)(nil)
	_ CartMutator    = (*Client)(nil)
	_ AddressMutator = (*Client)(nil)
	_ OrderMutator   = (*Client)(nil)
)

// Client talks to the storefront REST API.
type Client struct {
	baseURL   *url.URL
	basePath  string
	http      *http.Client
	userAgent string
	token     string
}

const (
	defaultAPIBase   = "http://127.0.0.1:5000/api"
	defaultUserAgent = "tote/0.1"
	requestTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20
)

// NewClient builds a Client for apiBase. token is sent as a bearer token when
// non-empty.
func NewClient(apiBase, token string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	basePath := strings.TrimRight(base.Path, "/")
	base.Path = ""
	base.RawPath = ""
	return &Client{
		baseURL:  base,
		basePath: basePath,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		token:     strings.TrimSpace(token),
	}, nil
}

// FetchCart retrieves the user's cart.
func (c *Client) FetchCart(ctx context.Context) (Cart, error) {
	var payload Cart
	if _, err := c.do(ctx, "fetch cart", http.MethodGet, "/user/cart", nil, nil, &payload); err != nil {
		return Cart{}, err
	}
	return payload, nil
}

// UpdateCartItem changes the size and quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, update CartItemUpdate) (CartItem, bool, error) {
	const op = "update cart item"
	id, err := pathParam(op, "itemId", itemID)
	if err != nil {
		return CartItem{}, false, err
	}
	var payload struct {
		Item *CartItem `json:"item"`
	}
	if _, err := c.do(ctx, op, http.MethodPatch, "/user/cart/"+id, nil, update, &payload); err != nil {
		return CartItem{}, false, err
	}
	if payload.Item == nil {
		return CartItem{}, false, nil
	}
	return *payload.Item, true, nil
}

// RemoveCartItem deletes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	const op = "remove cart item"
	id, err := pathParam(op, "itemId", itemID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodDelete, "/user/cart/"+id, nil, nil, nil)
	return err
}

// FetchAddresses retrieves the user's saved addresses.
func (c *Client) FetchAddresses(ctx context.Context) ([]Address, error) {
	var payload struct {
		Addresses []Address `json:"addresses"`
	}
	if _, err := c.do(ctx, "fetch addresses", http.MethodGet, "/user/addresses", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Addresses, nil
}

// SetDefaultAddress marks addressID as the default. The server clears the
// previous default.
func (c *Client) SetDefaultAddress(ctx context.Context, addressID string) (Address, bool, error) {
	const op = "set default address"
	id, err := pathParam(op, "addressId", addressID)
	if err != nil {
		return Address{}, false, err
	}
	var payload struct {
		Address *Address `json:"address"`
	}
	if _, err := c.do(ctx, op, http.MethodPatch, "/user/addresses/"+id+"/default", nil, nil, &payload); err != nil {
		return Address{}, false, err
	}
	if payload.Address == nil {
		return Address{}, false, nil
	}
	return *payload.Address, true, nil
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, addressID string) error {
	const op = "delete address"
	id, err := pathParam(op, "addressId", addressID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodDelete, "/user/addresses/"+id, nil, nil, nil)
	return err
}

// CreateOrder places an order for the current cart.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	var payload CreateOrderResponse
	if _, err := c.do(ctx, "create order", http.MethodPost, "/user/orders/create", nil, req, &payload); err != nil {
		return CreateOrderResponse{}, err
	}
	return payload, nil
}

// FetchOrders retrieves one page of the user's orders.
func (c *Client) FetchOrders(ctx context.Context, page, limit int) (OrdersPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))
	var payload OrdersPage
	if _, err := c.do(ctx, "fetch orders", http.MethodGet, "/user/orders/user-orders", values, nil, &payload); err != nil {
		return OrdersPage{}, err
	}
	if payload.CurrentPage == 0 {
		payload.CurrentPage = page
	}
	return payload, nil
}

// FetchOrder retrieves a single order.
func (c *Client) FetchOrder(ctx context.Context, id string) (Order, error) {
	const op = "fetch order"
	orderID, err := pathParam(op, "id", id)
	if err != nil {
		return Order{}, err
	}
	var payload struct {
		Order Order `json:"order"`
	}
	if _, err := c.do(ctx, op, http.MethodGet, "/user/orders/"+orderID, nil, nil, &payload); err != nil {
		return Order{}, err
	}
	return payload.Order, nil
}

// CancelOrderItem cancels one line of an order.
func (c *Client) CancelOrderItem(ctx context.Context, orderID, itemID string) (OrderItem, bool, error) {
	return c.patchOrderItem(ctx, "cancel order item", orderID, itemID, "cancel", nil)
}

// ReturnOrderItem requests a return for one line of an order.
func (c *Client) ReturnOrderItem(ctx context.Context, orderID, itemID string, req ReturnRequest) (OrderItem, bool, error) {
	return c.patchOrderItem(ctx, "return order item", orderID, itemID, "return", req)
}

// VerifyPayment forwards a payment gateway callback for verification.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResponse, error) {
	var payload VerifyPaymentResponse
	if _, err := c.do(ctx, "verify payment", http.MethodPost, "/user/orders/verify-payment", nil, req, &payload); err != nil {
		return VerifyPaymentResponse{}, err
	}
	return payload, nil
}

func (c *Client) patchOrderItem(ctx context.Context, op, orderID, itemID, action string, body any) (OrderItem, bool, error) {
	oid, err := pathParam(op, "orderId", orderID)
	if err != nil {
		return OrderItem{}, false, err
	}
	iid, err := pathParam(op, "itemId", itemID)
	if err != nil {
		return OrderItem{}, false, err
	}
	var payload struct {
		Item *OrderItem `json:"item"`
	}
	path := "/user/orders/" + oid + "/items/" + iid + "/" + action
	if _, err := c.do(ctx, op, http.MethodPatch, path, nil, body, &payload); err != nil {
		return OrderItem{}, false, err
	}
	if payload.Item == nil {
		return OrderItem{}, false, nil
	}
	return *payload.Item, true, nil
}

// do issues one request. It reports whether the response carried a body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, dest any) (bool, error) {
	if c == nil {
		return false, NewError(op, KindNetwork, "client is nil")
	}
	rel, err := url.Parse(c.basePath + path)
	if err != nil {
		return false, &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf("parse path: %w", err)}
	}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return false, &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return false, &Error{Op: op, Kind: KindNetwork, RequestID: requestID, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, &Error{Op: op, Kind: KindNetwork, RequestID: requestID, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, RequestID: requestID, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 300 {
		return false, &Error{
			Op:        op,
			Kind:      classifyStatus(resp.StatusCode),
			Status:    resp.StatusCode,
			Message:   errorMessage(data),
			RequestID: requestID,
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, &Error{Op: op, Kind: KindServerError, Status: resp.StatusCode, RequestID: requestID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return true, nil
}

// pathParam escapes a single path segment using the OpenAPI simple style.
func pathParam(op, name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", NewError(op, KindValidation, name+" is required")
	}
	styled, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf("style %s: %w", name, err)}
	}
	return styled, nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", apiBase)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
