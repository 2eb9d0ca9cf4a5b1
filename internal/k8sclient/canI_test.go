package k8sclient

import (
	"context"
	"testing"

	authorizationv1 "k8s.io/api/authorization/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"
)

func TestCanI_ReturnsAllowedFromReview(t *testing.T) {
	cs := k8sfake.NewSimpleClientset()
	cs.PrependReactor("create", "selfsubjectaccessreviews", func(action clienttesting.Action) (bool, runtime.Object, error) {
		review := action.(clienttesting.CreateAction).GetObject().(*authorizationv1.SelfSubjectAccessReview)
		review.Status.Allowed = review.Spec.ResourceAttributes.Verb == "get"
		return true, review, nil
	})

	bundle := &Bundle{Clientset: cs}

	allowed, err := CanI(context.Background(), bundle, "get", "pods", "prod")
	if err != nil {
		t.Fatalf("CanI(get): unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("CanI(get) should be allowed")
	}

	denied, err := CanI(context.Background(), bundle, "delete", "pods", "prod")
	if err != nil {
		t.Fatalf("CanI(delete): unexpected error: %v", err)
	}
	if denied {
		t.Fatal("CanI(delete) should be denied")
	}
}

func TestCanI_NilBundleIsError(t *testing.T) {
	if _, err := CanI(context.Background(), nil, "get", "pods", "prod"); err == nil {
		t.Fatal("CanI with a nil bundle should return an error")
	}
}
