package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/commerce-kit/internal/core/domain"
	"github.com/rl1809/commerce-kit/internal/core/service"
)

const serviceName = "commerce.v1.CommerceService"

// idempotencyMetadataKey carries the Idempotency-Key header over gRPC.
const idempotencyMetadataKey = "idempotency-key"

type UsersReply struct {
	Users []domain.User `json:"users"`
}

type SalesReply struct {
	Sales []domain.Sale `json:"sales"`
}

type InventoryReply struct {
	Records []domain.Inventory `json:"records"`
}

type CommerceServer interface {
	ListUsers(context.Context, *Empty) (*UsersReply, error)
	ListSales(context.Context, *Empty) (*SalesReply, error)
	ListInventory(context.Context, *Empty) (*InventoryReply, error)
	UpdateInventory(context.Context, *UpdateInventoryRequest) (*domain.Inventory, error)
	CreateFulfillment(context.Context, *CreateFulfillmentRequest) (*domain.Fulfillment, error)
	GetFulfillmentStatus(context.Context, *FulfillmentStatusRequest) (*domain.Fulfillment, error)
}

func RegisterCommerceServer(s grpc.ServiceRegistrar, srv CommerceServer) {
	s.RegisterService(&CommerceServiceDesc, srv)
}

var CommerceServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CommerceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsers", Handler: unaryHandler("ListUsers", CommerceServer.ListUsers)},
		{MethodName: "ListSales", Handler: unaryHandler("ListSales", CommerceServer.ListSales)},
		{MethodName: "ListInventory", Handler: unaryHandler("ListInventory", CommerceServer.ListInventory)},
		{MethodName: "UpdateInventory", Handler: unaryHandler("UpdateInventory", CommerceServer.UpdateInventory)},
		{MethodName: "CreateFulfillment", Handler: unaryHandler("CreateFulfillment", CommerceServer.CreateFulfillment)},
		{MethodName: "GetFulfillmentStatus", Handler: unaryHandler("GetFulfillmentStatus", CommerceServer.GetFulfillmentStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "commerce/v1/commerce.json",
}

func unaryHandler[Req, Resp any](method string, call func(CommerceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CommerceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CommerceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCHandler struct {
	api *API
}

func NewGRPCHandler(api *API) *GRPCHandler {
	return &GRPCHandler{api: api}
}

func (h *GRPCHandler) ListUsers(ctx context.Context, _ *Empty) (*UsersReply, error) {
	users, err := h.api.catalog.ListUsers(ctx)
	if err != nil {
		return nil, h.grpcError(opListUsers, err)
	}
	return &UsersReply{Users: users}, nil
}

func (h *GRPCHandler) ListSales(ctx context.Context, _ *Empty) (*SalesReply, error) {
	sales, err := h.api.catalog.ListSales(ctx)
	if err != nil {
		return nil, h.grpcError(opListSales, err)
	}
	return &SalesReply{Sales: sales}, nil
}

func (h *GRPCHandler) ListInventory(ctx context.Context, _ *Empty) (*InventoryReply, error) {
	records, err := h.api.catalog.ListInventory(ctx)
	if err != nil {
		return nil, h.grpcError(opListInventory, err)
	}
	return &InventoryReply{Records: records}, nil
}

func (h *GRPCHandler) UpdateInventory(ctx context.Context, req *UpdateInventoryRequest) (*domain.Inventory, error) {
	adj, err := req.toDomain()
	if err != nil {
		return nil, h.grpcError(opUpdateInventory, err)
	}

	inv, err := h.api.catalog.UpdateInventory(ctx, adj)
	if err != nil {
		return nil, h.grpcError(opUpdateInventory, err)
	}
	if inv == nil {
		return nil, status.Error(codes.NotFound, "Inventory record not found")
	}
	return inv, nil
}

func (h *GRPCHandler) CreateFulfillment(ctx context.Context, req *CreateFulfillmentRequest) (*domain.Fulfillment, error) {
	fr, err := req.toDomain()
	if err != nil {
		return nil, h.grpcError(opCreateFulfillment, err)
	}

	var key string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(idempotencyMetadataKey); len(values) > 0 {
			key = values[0]
		}
	}

	f, err := h.api.fulfillments.CreateFulfillment(ctx, fr, key)
	if err != nil {
		return nil, h.grpcError(opCreateFulfillment, err)
	}
	return f, nil
}

func (h *GRPCHandler) GetFulfillmentStatus(ctx context.Context, req *FulfillmentStatusRequest) (*domain.Fulfillment, error) {
	f, err := h.api.fulfillments.GetFulfillmentStatus(ctx, req.FulfillmentID)
	if err != nil {
		return nil, h.grpcError(opFulfillmentStatus, err)
	}
	return f, nil
}

func (h *GRPCHandler) grpcError(op operation, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrFulfillmentNotFound):
		return status.Error(codes.NotFound, "Fulfillment not found")
	case errors.Is(err, service.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, "Duplicate request")
	case errors.Is(err, service.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, "Insufficient stock")
	case errors.Is(err, service.ErrInventoryNotFound):
		return status.Error(codes.FailedPrecondition, "Inventory record not found")
	}

	h.api.logger.Error("rpc failed", "operation", string(op), "error", err)
	return status.Error(codes.Internal, failureMessages[op])
}

// CommerceClient calls CommerceService with the JSON codec.
type CommerceClient struct {
	cc grpc.ClientConnInterface
}

func NewCommerceClient(cc grpc.ClientConnInterface) *CommerceClient {
	return &CommerceClient{cc: cc}
}

func (c *CommerceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *CommerceClient) ListUsers(ctx context.Context, opts ...grpc.CallOption) (*UsersReply, error) {
	out := new(UsersReply)
	if err := c.invoke(ctx, "ListUsers", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CommerceClient) ListSales(ctx context.Context, opts ...grpc.CallOption) (*SalesReply, error) {
	out := new(SalesReply)
	if err := c.invoke(ctx, "ListSales", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CommerceClient) ListInventory(ctx context.Context, opts ...grpc.CallOption) (*InventoryReply, error) {
	out := new(InventoryReply)
	if err := c.invoke(ctx, "ListInventory", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CommerceClient) UpdateInventory(ctx context.Context, in *UpdateInventoryRequest, opts ...grpc.CallOption) (*domain.Inventory, error) {
	out := new(domain.Inventory)
	if err := c.invoke(ctx, "UpdateInventory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFulfillment sends idempotencyKey as metadata when it is non-empty.
func (c *CommerceClient) CreateFulfillment(ctx context.Context, in *CreateFulfillmentRequest, idempotencyKey string, opts ...grpc.CallOption) (*domain.Fulfillment, error) {
	if idempotencyKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, idempotencyMetadataKey, idempotencyKey)
	}
	out := new(domain.Fulfillment)
	if err := c.invoke(ctx, "CreateFulfillment", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CommerceClient) GetFulfillmentStatus(ctx context.Context, id int64, opts ...grpc.CallOption) (*domain.Fulfillment, error) {
	out := new(domain.Fulfillment)
	if err := c.invoke(ctx, "GetFulfillmentStatus", &FulfillmentStatusRequest{FulfillmentID: id}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
