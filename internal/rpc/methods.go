package rpc

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/psstapp/psst-server/internal/auth"
	"github.com/psstapp/psst-server/internal/codec"
	"github.com/psstapp/psst-server/internal/service"
)

// methodFunc handles one RPC method with positional params.
type methodFunc func(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error)

// errInvalidParams marks parameter decoding failures so the transport
// can report them with the right protocol code.
var errInvalidParams = errors.New("invalid params")

func invalidParams(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidParams, fmt.Sprintf(format, args...))
}

func (s *Server) registerMethods() {
	s.methods = map[string]methodFunc{
		"createSpace":       s.rpcCreateSpace,
		"joinSpace":         s.rpcJoinSpace,
		"getSpace":          s.rpcGetSpace,
		"hasSpace":          s.rpcHasSpace,
		"verifyInvite":      s.rpcVerifyInvite,
		"getInviteDetails":  s.rpcGetInviteDetails,
		"getSecret":         s.rpcGetSecret,
		"setSecret":         s.rpcSetSecret,
		"addPost":           s.rpcAddPost,
		"editPost":          s.rpcEditPost,
		"deletePost":        s.rpcDeletePost,
		"getPost":           s.rpcGetPost,
		"getPosts":          s.rpcGetPosts,
		"markPostAsSeen":    s.rpcMarkPostAsSeen,
		"markPostAsUnseen":  s.rpcMarkPostAsUnseen,
		"getVapidPublicKey": s.rpcGetVapidPublicKey,
		"addSubscription":   s.rpcAddSubscription,
	}
}

// param decodes the i-th positional parameter into dst.
func param(params []jsontext.Value, i int, dst any) error {
	if i >= len(params) || isNull(params[i]) {
		return invalidParams("missing parameter %d", i)
	}
	if err := json.Unmarshal(params[i], dst); err != nil {
		return invalidParams("parameter %d: %v", i, err)
	}
	return nil
}

// optionalString decodes the i-th parameter, treating absence and null
// as the empty string.
func optionalString(params []jsontext.Value, i int) (string, error) {
	if i >= len(params) || isNull(params[i]) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(params[i], &s); err != nil {
		return "", invalidParams("parameter %d: %v", i, err)
	}
	return s, nil
}

// hexParam decodes the i-th parameter as a hex string into raw bytes.
func hexParam(params []jsontext.Value, i int) ([]byte, error) {
	var s string
	if err := param(params, i, &s); err != nil {
		return nil, err
	}
	b, err := codec.FromHex(s)
	if err != nil {
		return nil, invalidParams("parameter %d: %v", i, err)
	}
	return b, nil
}

func (s *Server) rpcCreateSpace(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var req service.CreateSpaceRequest
	if err := param(params, 0, &req.SpaceName); err != nil {
		return nil, err
	}
	name, err := optionalString(params, 1)
	if err != nil {
		return nil, err
	}
	req.Name = name
	return nil, s.spaces.CreateSpace(ctx, caller, req)
}

func (s *Server) rpcJoinSpace(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	name, err := optionalString(params, 0)
	if err != nil {
		return nil, err
	}
	invite, err := hexParam(params, 1)
	if err != nil {
		return nil, err
	}
	return nil, s.spaces.Join(ctx, caller, service.JoinRequest{Name: name, Invite: invite})
}

func (s *Server) rpcGetSpace(ctx context.Context, caller auth.Identity, _ []jsontext.Value) (any, error) {
	return s.spaces.GetSpace(ctx, caller)
}

func (s *Server) rpcHasSpace(ctx context.Context, _ auth.Identity, params []jsontext.Value) (any, error) {
	var name string
	if err := param(params, 0, &name); err != nil {
		return nil, err
	}
	return s.spaces.HasSpace(ctx, name)
}

func (s *Server) rpcVerifyInvite(ctx context.Context, _ auth.Identity, params []jsontext.Value) (any, error) {
	invite, err := hexParam(params, 0)
	if err != nil {
		return nil, err
	}
	return s.spaces.VerifyInvite(ctx, invite)
}

func (s *Server) rpcGetInviteDetails(ctx context.Context, _ auth.Identity, params []jsontext.Value) (any, error) {
	issuer, err := hexParam(params, 0)
	if err != nil {
		return nil, err
	}
	return s.spaces.GetInviteDetails(ctx, issuer)
}

// secretPayload is the wire form of a stored secret. Value and nonce
// travel hex-encoded.
type secretPayload struct {
	Value string `json:"value"`
	Nonce string `json:"nonce"`
}

func (s *Server) rpcGetSecret(ctx context.Context, caller auth.Identity, _ []jsontext.Value) (any, error) {
	secret, err := s.secrets.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, nil
	}
	return secretPayload{
		Value: codec.ToHex(secret.Value),
		Nonce: codec.ToHex(secret.Nonce),
	}, nil
}

func (s *Server) rpcSetSecret(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	value, err := hexParam(params, 0)
	if err != nil {
		return nil, err
	}
	nonce, err := hexParam(params, 1)
	if err != nil {
		return nil, err
	}
	return nil, s.secrets.Set(ctx, caller, service.SetSecretRequest{Value: value, Nonce: nonce})
}

func (s *Server) rpcAddPost(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var req service.AddPostRequest
	parentID, err := optionalString(params, 0)
	if err != nil {
		return nil, err
	}
	req.ParentID = parentID
	if err := param(params, 1, &req.Title); err != nil {
		return nil, err
	}
	body, err := optionalString(params, 2)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return s.forum.AddPost(ctx, caller, req)
}

func (s *Server) rpcEditPost(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var req service.EditPostRequest
	if err := param(params, 0, &req.ID); err != nil {
		return nil, err
	}
	if err := param(params, 1, &req.Title); err != nil {
		return nil, err
	}
	body, err := optionalString(params, 2)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return nil, s.forum.EditPost(ctx, caller, req)
}

func (s *Server) rpcDeletePost(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var id string
	if err := param(params, 0, &id); err != nil {
		return nil, err
	}
	return nil, s.forum.DeletePost(ctx, caller, id)
}

func (s *Server) rpcGetPost(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var id string
	if err := param(params, 0, &id); err != nil {
		return nil, err
	}
	return s.forum.GetPost(ctx, caller, id)
}

func (s *Server) rpcGetPosts(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var req service.ListPostsRequest
	parentID, err := optionalString(params, 0)
	if err != nil {
		return nil, err
	}
	req.ParentID = parentID
	if len(params) > 1 && !isNull(params[1]) {
		if err := param(params, 1, &req.Limit); err != nil {
			return nil, err
		}
	}
	if len(params) > 2 && !isNull(params[2]) {
		if err := param(params, 2, &req.Offset); err != nil {
			return nil, err
		}
	}
	return s.forum.GetPosts(ctx, caller, req)
}

func (s *Server) rpcMarkPostAsSeen(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var id string
	if err := param(params, 0, &id); err != nil {
		return nil, err
	}
	return nil, s.forum.MarkSeen(ctx, caller, id)
}

func (s *Server) rpcMarkPostAsUnseen(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var id string
	if err := param(params, 0, &id); err != nil {
		return nil, err
	}
	return nil, s.forum.MarkUnseen(ctx, caller, id)
}

func (s *Server) rpcGetVapidPublicKey(_ context.Context, _ auth.Identity, _ []jsontext.Value) (any, error) {
	return s.subs.VapidPublicKey(), nil
}

func (s *Server) rpcAddSubscription(ctx context.Context, caller auth.Identity, params []jsontext.Value) (any, error) {
	var req service.AddSubscriptionRequest
	if err := param(params, 0, &req); err != nil {
		return nil, err
	}
	return nil, s.subs.Add(ctx, caller, req)
}
